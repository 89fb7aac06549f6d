// Package analytics turns one parsed block into the pipeline's full set of
// named metric observations, fed into a window.Aggregator for windowed
// summary statistics and a csvout.HistogramSet for the script-type
// distributions.
package analytics

import (
	"fmt"

	"chainstats/pkg/csvout"
	"chainstats/pkg/script"
	"chainstats/pkg/window"
	"chainstats/pkg/wire"
)

// AnomalyFunc receives a block-level invariant violation that should be
// logged but not abort the run: at present, only a block whose coinbase
// reward doesn't match its expected subsidy plus fees.
type AnomalyFunc func(meanHeight float64, subsidy, maxSubsidy int64)

// Process records every metric this pipeline tracks for one block. fees
// must be the same length as blk.Transactions, each entry already computed
// by the driver via wire.Transaction.ResolveSpentTypes (0 for the coinbase
// transaction, at index 0).
func Process(agg *window.Aggregator, hist *csvout.HistogramSet, blk *wire.Block, fees []int64, height int, anomaly AnomalyFunc) {
	amountTransferred(agg, blk)
	inputsAndOutputs(agg, blk)
	spentUTXOTypes(agg, hist, blk)
	createdUTXOTypes(agg, hist, blk)
	txCountSizeWeight(agg, blk)
	blockMeta(agg, blk)
	feesAndSubsidy(agg, blk, fees, height, anomaly)
}

func amountTransferred(agg *window.Aggregator, blk *wire.Block) {
	perTx := make([]float64, len(blk.Transactions))
	var total float64
	for i, tx := range blk.Transactions {
		var sum float64
		for _, out := range tx.Outputs {
			sum += float64(out.Amount)
		}
		perTx[i] = sum
		total += sum
	}
	agg.InsertList("amount_transferred_per_tx", perTx)
	agg.InsertScalar("amount_transferred_per_block", total)
}

func inputsAndOutputs(agg *window.Aggregator, blk *wire.Block) {
	inputsPerTx := make([]float64, len(blk.Transactions))
	outputsPerTx := make([]float64, len(blk.Transactions))
	var inputSizes, outputSizes []float64
	var totalInputs, totalOutputs float64

	for i, tx := range blk.Transactions {
		inputsPerTx[i] = float64(len(tx.Inputs))
		outputsPerTx[i] = float64(len(tx.Outputs))
		totalInputs += float64(len(tx.Inputs))
		totalOutputs += float64(len(tx.Outputs))
		for _, in := range tx.Inputs {
			inputSizes = append(inputSizes, float64(in.Size))
		}
		for _, out := range tx.Outputs {
			outputSizes = append(outputSizes, float64(out.Size))
		}
	}

	agg.InsertList("inputs_per_tx", inputsPerTx)
	agg.InsertList("outputs_per_tx", outputsPerTx)
	agg.InsertList("input_size_per_tx", inputSizes)
	agg.InsertList("output_size_per_tx", outputSizes)
	agg.InsertScalar("total_inputs_per_block", totalInputs)
	agg.InsertScalar("total_outputs_per_block", totalOutputs)
}

// targetName builds the metric/histogram name for a classified script
// type, appending "-m-of-n" for the four multisig-family types.
func targetName(t script.Type, m, n int, haveArity bool) string {
	if t.IsMultisigFamily() && haveArity {
		return fmt.Sprintf("%s-%d-of-%d", t, m, n)
	}
	return t.String()
}

func spentUTXOTypes(agg *window.Aggregator, hist *csvout.HistogramSet, blk *wire.Block) {
	counts := make(map[string]float64)
	for _, tx := range blk.Transactions {
		for _, in := range tx.Inputs {
			m, n, haveArity := script.MultisigArity(in.SpentType, in.SpentScript, in.ScriptSig, in.Witness)
			target := targetName(in.SpentType, m, n, haveArity)
			counts[target]++

			scriptSigLen := int64(len(in.ScriptSig))
			spentScriptLen := int64(0)
			if !in.IsCoinbase() {
				spentScriptLen = int64(len(in.SpentScript))
			}
			witnessLen := int64(in.Witness.Size())

			hist.Add("input_"+target+"_script_sig", scriptSigLen)
			hist.Add("input_"+target+"_spent_utxo_script_pubkey", spentScriptLen)
			hist.Add("input_"+target+"_witness", witnessLen)
			hist.Add("input_"+target+"_sum_scripts_and_witness", scriptSigLen+spentScriptLen+witnessLen)
			hist.Add("input_"+target+"_total", 1)
		}
	}
	for target, count := range counts {
		agg.InsertScalar("spent_UTXO_type_"+target, count)
	}
}

func createdUTXOTypes(agg *window.Aggregator, hist *csvout.HistogramSet, blk *wire.Block) {
	counts := make(map[string]float64)
	for _, tx := range blk.Transactions {
		for _, out := range tx.Outputs {
			m, n, haveArity := out.ScriptPubKey.MultisigParams()
			target := targetName(out.Type, m, n, haveArity)
			counts[target]++

			hist.Add("output_"+target+"_script_pubkey", int64(len(out.ScriptPubKey)))
			hist.Add("output_"+target+"_total", 1)
		}
	}
	for target, count := range counts {
		agg.InsertScalar("created_UTXO_type_"+target, count)
	}
}

func txCountSizeWeight(agg *window.Aggregator, blk *wire.Block) {
	txSizes := make([]float64, len(blk.Transactions))
	txWeights := make([]float64, len(blk.Transactions))
	var segwitCount float64
	var segwitWitnessSizes, segwitRatios []float64
	var segwitWitnessSum, segwitSizeSum float64

	for i, tx := range blk.Transactions {
		txSizes[i] = float64(tx.Size)
		txWeights[i] = float64(tx.Weight)
		if !tx.IsSegWit {
			continue
		}
		segwitCount++
		witnessSize := float64(tx.Size - tx.StrippedSize)
		segwitWitnessSizes = append(segwitWitnessSizes, witnessSize)
		segwitRatios = append(segwitRatios, witnessSize/float64(tx.Size))
		segwitWitnessSum += witnessSize
		segwitSizeSum += float64(tx.Size)
	}

	agg.InsertScalar("number_of_tx_per_block", float64(len(blk.Transactions)))
	agg.InsertScalar("number_of_segwit_tx_per_block", segwitCount)
	fraction := 0.0
	if len(blk.Transactions) > 0 {
		fraction = segwitCount / float64(len(blk.Transactions))
	}
	agg.InsertScalar("fraction_of_segwit_tx_per_block", fraction)
	agg.InsertList("tx_size", txSizes)
	agg.InsertList("tx_weight", txWeights)

	if segwitCount > 0 {
		agg.InsertList("segwit_tx_witness_size", segwitWitnessSizes)
		agg.InsertList("segwit_ratio_in_segwit_tx", segwitRatios)
		agg.InsertScalar("segwit_ratio_mean_in_segwit_tx", segwitWitnessSum/segwitSizeSum)
	}
}

func blockMeta(agg *window.Aggregator, blk *wire.Block) {
	var segwitBytes int
	for _, tx := range blk.Transactions {
		segwitBytes += tx.Size - tx.StrippedSize
	}
	strippedBlockSize := blk.Size - segwitBytes
	blockWeight := strippedBlockSize*4 + segwitBytes

	var txsWeight float64
	for _, tx := range blk.Transactions {
		txsWeight += float64(tx.Weight)
	}

	agg.InsertScalar("block_size", float64(blk.Size))
	agg.InsertScalar("stripped_block_size", float64(strippedBlockSize))
	agg.InsertScalar("block_weight", float64(blockWeight))
	agg.InsertScalar("block_transactions_weight", txsWeight)
	agg.InsertScalar("block_diff", Difficulty(blk.Header.Bits))
	agg.InsertScalar("block_timestamp", float64(blk.Header.Timestamp))
	agg.InsertScalar("block_version", float64(blk.Header.Version))
}

func feesAndSubsidy(agg *window.Aggregator, blk *wire.Block, fees []int64, height int, anomaly AnomalyFunc) {
	txs := blk.Transactions
	absFees := make([]float64, len(txs))
	relFeesBySize := make([]float64, len(txs))
	relFeesByWeight := make([]float64, len(txs))
	var sumFees, sumSizes, sumWeights float64

	for i, tx := range txs {
		fee := float64(fees[i])
		absFees[i] = fee
		relFeesBySize[i] = fee / float64(tx.Size)
		relFeesByWeight[i] = fee / float64(tx.Weight)
		sumFees += fee
		sumSizes += float64(tx.Size)
		sumWeights += float64(tx.Weight)
	}

	agg.InsertList("absolute_fee_per_tx_incl_coinbase", absFees)
	agg.InsertList("relative_fee_per_tx_incl_coinbase", relFeesBySize)
	agg.InsertList("relative_fee_per_WU_per_tx_incl_coinbase", relFeesByWeight)
	agg.InsertScalar("relative_fee_per_tx_mean_incl_coinbase", sumFees/sumSizes)
	agg.InsertScalar("relative_fee_per_WU_per_tx_mean_incl_coinbase", sumFees/sumWeights)
	agg.InsertScalar("total_block_fees_incl_coinbase", sumFees)

	if len(txs) > 1 {
		agg.InsertList("absolute_fee_per_tx_excl_coinbase", absFees[1:])
		agg.InsertList("relative_fee_per_tx_excl_coinbase", relFeesBySize[1:])
		agg.InsertList("relative_fee_per_WU_per_tx_excl_coinbase", relFeesByWeight[1:])

		var sumFeesExcl, sumSizesExcl, sumWeightsExcl float64
		for i := 1; i < len(txs); i++ {
			sumFeesExcl += absFees[i]
			sumSizesExcl += float64(txs[i].Size)
			sumWeightsExcl += float64(txs[i].Weight)
		}
		agg.InsertScalar("relative_fee_per_tx_mean_excl_coinbase", sumFeesExcl/sumSizesExcl)
		agg.InsertScalar("relative_fee_per_WU_per_tx_mean_excl_coinbase", sumFeesExcl/sumWeightsExcl)
		agg.InsertScalar("total_block_fees_excl_coinbase", sumFeesExcl)
	}

	var reward int64
	if len(txs) > 0 {
		for _, out := range txs[0].Outputs {
			reward += out.Amount
		}
	}
	agg.InsertScalar("block_reward", float64(reward))

	subsidy := reward - int64(sumFees)
	agg.InsertScalar("block_subsidy", float64(subsidy))

	maxSubsidy := MaxBlockSubsidy(height)
	if subsidy != maxSubsidy {
		anomaly(float64(height), subsidy, maxSubsidy)
	}
}
