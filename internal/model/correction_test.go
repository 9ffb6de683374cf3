package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"KaoQin/pkg/errors"
)

func TestCorrectionTypeValid(t *testing.T) {
	assert.True(t, CorrectionTypeClockIn.Valid())
	assert.True(t, CorrectionTypeClockOut.Valid())
	assert.True(t, CorrectionTypeBreakIn.Valid())
	assert.True(t, CorrectionTypeBreakOut.Valid())
	assert.False(t, CorrectionType("overtime").Valid())
}

// 补上班卡要求当日没有考勤记录，其余类型反之
func TestCorrectionTypeCheckTarget(t *testing.T) {
	assert.NoError(t, CorrectionTypeClockIn.CheckTarget(false))
	assert.ErrorIs(t, CorrectionTypeClockIn.CheckTarget(true), errors.AttendanceExists)

	for _, typ := range []CorrectionType{CorrectionTypeClockOut, CorrectionTypeBreakIn, CorrectionTypeBreakOut} {
		assert.NoError(t, typ.CheckTarget(true))
		assert.ErrorIs(t, typ.CheckTarget(false), errors.AttendanceNotFound)
	}
}

func TestCorrectionStatusDecided(t *testing.T) {
	assert.False(t, CorrectionStatusPending.Decided())
	assert.True(t, CorrectionStatusApproved.Decided())
	assert.True(t, CorrectionStatusRejected.Decided())
}
