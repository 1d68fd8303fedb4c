package training

// Change proposals carry only numeric previous/new values, so the
// non-numeric properties (set type, rep-range mode, rest-time mode)
// are encoded through the codecs below.

// ChangeValue encodes a set type as a proposal value.
func (t SetType) ChangeValue() float64 {
	switch t {
	case SetTypeWarmup:
		return 0
	case SetTypeWorking:
		return 1
	case SetTypeSuperSet:
		return 2
	case SetTypeDropSet:
		return 3
	case SetTypeFailure:
		return 4
	}
	return -1
}

func SetTypeFromChangeValue(v float64) (SetType, bool) {
	switch v {
	case 0:
		return SetTypeWarmup, true
	case 1:
		return SetTypeWorking, true
	case 2:
		return SetTypeSuperSet, true
	case 3:
		return SetTypeDropSet, true
	case 4:
		return SetTypeFailure, true
	}
	return "", false
}

// ChangeValue encodes a rep-range mode as a proposal value.
func (m RepRangeMode) ChangeValue() float64 {
	switch m {
	case RepRangeNotSet:
		return 0
	case RepRangeTarget:
		return 1
	case RepRangeRange:
		return 2
	case RepRangeUntilFailure:
		return 3
	}
	return -1
}

func RepRangeModeFromChangeValue(v float64) (RepRangeMode, bool) {
	switch v {
	case 0:
		return RepRangeNotSet, true
	case 1:
		return RepRangeTarget, true
	case 2:
		return RepRangeRange, true
	case 3:
		return RepRangeUntilFailure, true
	}
	return "", false
}

// ChangeValue encodes a rest-time mode as a proposal value.
func (m RestTimeMode) ChangeValue() float64 {
	switch m {
	case RestTimeAllSame:
		return 0
	case RestTimeByType:
		return 1
	case RestTimeIndividual:
		return 2
	}
	return -1
}

func RestTimeModeFromChangeValue(v float64) (RestTimeMode, bool) {
	switch v {
	case 0:
		return RestTimeAllSame, true
	case 1:
		return RestTimeByType, true
	case 2:
		return RestTimeIndividual, true
	}
	return "", false
}
