package script

import "fmt"

// Disassemble renders a script as a human-readable opcode sequence, for
// debugging; nothing else in this module calls it. It never fails: any opcode it doesn't recognize renders as OP_UNKNOWN(0xNN)
// and a malformed trailing push renders as [truncated].
func (s Script) Disassemble() string {
	out := ""
	pos := 0
	for pos < len(s) {
		op := s[pos]
		switch {
		case op == opZero:
			out += "OP_0 "
			pos++
		case op >= 0x01 && op <= 0x4b:
			n := int(op)
			pos++
			if pos+n > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			out += fmt.Sprintf("OP_PUSHBYTES_%d(%x) ", n, s[pos:pos+n])
			pos += n
		case op == opPushData1:
			pos++
			if pos >= len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			n := int(s[pos])
			pos++
			if pos+n > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			out += fmt.Sprintf("OP_PUSHDATA1(%x) ", s[pos:pos+n])
			pos += n
		case op == opPushData2:
			if pos+3 > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			n := int(s[pos+1]) | int(s[pos+2])<<8
			pos += 3
			if pos+n > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			out += fmt.Sprintf("OP_PUSHDATA2(%x) ", s[pos:pos+n])
			pos += n
		case op == opPushData4:
			if pos+5 > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			n := int(s[pos+1]) | int(s[pos+2])<<8 | int(s[pos+3])<<16 | int(s[pos+4])<<24
			pos += 5
			if pos+n > len(s) {
				out += "[truncated] "
				pos = len(s)
				break
			}
			out += fmt.Sprintf("OP_PUSHDATA4(%x) ", s[pos:pos+n])
			pos += n
		case op == op1Negate:
			out += "OP_1NEGATE "
			pos++
		case op >= op1 && op <= op16:
			out += fmt.Sprintf("OP_%d ", int(op)-op1+1)
			pos++
		default:
			if name, ok := opcodeNames[op]; ok {
				out += name + " "
			} else {
				out += fmt.Sprintf("OP_UNKNOWN(0x%02x) ", op)
			}
			pos++
		}
	}
	return out
}

// opcodeNames covers the fixed, non-push opcodes a block explorer needs to
// name; anything absent here falls back to OP_UNKNOWN in Disassemble.
var opcodeNames = map[byte]string{
	opVerify:        "OP_VERIFY",
	opReturn:        "OP_RETURN",
	opDup:           "OP_DUP",
	opEqual:         "OP_EQUAL",
	opEqualVerify:   "OP_EQUALVERIFY",
	opHash160:       "OP_HASH160",
	opCheckSig:      "OP_CHECKSIG",
	opCheckMultiSig: "OP_CHECKMULTISIG",
	0x6b:            "OP_TOALTSTACK",
	0x6c:            "OP_FROMALTSTACK",
	0x6d:            "OP_2DROP",
	0x6e:            "OP_2DUP",
	0x73:            "OP_IFDUP",
	0x74:            "OP_DEPTH",
	0x75:            "OP_DROP",
	0x77:            "OP_NIP",
	0x78:            "OP_OVER",
	0x79:            "OP_PICK",
	0x7a:            "OP_ROLL",
	0x7b:            "OP_ROT",
	0x7c:            "OP_SWAP",
	0x7d:            "OP_TUCK",
	0x7e:            "OP_CAT",
	0x7f:            "OP_SUBSTR",
	0x82:            "OP_SIZE",
	0x83:            "OP_INVERT",
	0x84:            "OP_AND",
	0x85:            "OP_OR",
	0x86:            "OP_XOR",
	0x89:            "OP_RESERVED1",
	0x8a:            "OP_RESERVED2",
	0x8b:            "OP_1ADD",
	0x8c:            "OP_1SUB",
	0x8f:            "OP_NEGATE",
	0x90:            "OP_ABS",
	0x91:            "OP_NOT",
	0x93:            "OP_ADD",
	0x94:            "OP_SUB",
	0x9a:            "OP_BOOLAND",
	0x9b:            "OP_BOOLOR",
	0x9c:            "OP_NUMEQUAL",
	0x9d:            "OP_NUMEQUALVERIFY",
	0x9e:            "OP_NUMNOTEQUAL",
	0x9f:            "OP_LESSTHAN",
	0xa0:            "OP_GREATERTHAN",
	0xa1:            "OP_LESSTHANOREQUAL",
	0xa2:            "OP_GREATERTHANOREQUAL",
	0xa3:            "OP_MIN",
	0xa4:            "OP_MAX",
	0xa5:            "OP_WITHIN",
	0xa6:            "OP_RIPEMD160",
	0xa7:            "OP_SHA1",
	0xa8:            "OP_SHA256",
	0xaa:            "OP_HASH256",
	0xab:            "OP_CODESEPARATOR",
	0xad:            "OP_CHECKSIGVERIFY",
	0xaf:            "OP_CHECKMULTISIGVERIFY",
	0xb1:            "OP_CHECKLOCKTIMEVERIFY",
	0xb2:            "OP_CHECKSEQUENCEVERIFY",
}
