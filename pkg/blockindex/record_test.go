package blockindex

import "testing"
import "github.com/stretchr/testify/assert"

func TestFailedMaskIsBitwise(t *testing.T) {
	// This is the exact case that a Python `or` between two truthy ints
	// gets wrong: a status carrying only BLOCK_FAILED_CHILD must still
	// be detected, not just one carrying BLOCK_FAILED_VALID.
	assert.True(t, Record{Status: FailedChild}.Failed(), "a status with only FailedChild set must be reported as failed")
	assert.True(t, Record{Status: FailedValid}.Failed(), "a status with only FailedValid set must be reported as failed")
	assert.False(t, Record{Status: HaveData}.Failed(), "HaveData alone must not be reported as failed")
}

func TestHasData(t *testing.T) {
	assert.True(t, Record{Status: HaveData | OptWitness}.HasData())
	assert.False(t, Record{Status: HaveUndo}.HasData(), "HaveUndo alone must not imply HasData")
}
