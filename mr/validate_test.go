package mr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(Te *testing.T, C *Context, sub string, b Bounds) (*DstFunc, []string) {
	Te.Helper()
	C.f = nil
	C.Enter(sub, 1)
	D := C.Validate(b)
	C.Exit()
	return D, kinds(C.Warnings())
}

func TestValidateRejects(Te *testing.T) {
	C := newContext(Te, nil)
	cases := []struct {
		sub  string
		b    Bounds
		kind string
	}{
		{Dist, Bounds{Weight: V(-1), Upper: V(5)}, InvalidData},
		{Dist, Bounds{Weight: V(1)}, MissingData},
		{Dist, Bounds{Target: V(200)}, RangeError},
		{Dist, Bounds{Lower: V(6), Upper: V(5)}, RangeError},
		{Dist, Bounds{Target: V(4), Upper: V(3)}, RangeError},
		{Dist, Bounds{LowerLinear: V(3), Lower: V(2)}, RangeError},
		{Dihed, Bounds{Lower: V(300), Upper: V(400)}, RangeError},
		{RDC, Bounds{Target: V(-300)}, RangeError},
		{PCS, Bounds{Target: V(40)}, RangeError},
		{T1T2, Bounds{Target: V(0)}, RangeError},
	}
	for _, c := range cases {
		D, k := validate(Te, C, c.sub, c.b)
		assert.Nil(Te, D, c)
		assert.Equal(Te, []string{c.kind}, k, c)
	}
}

func TestValidateOutliers(Te *testing.T) {
	C := newContext(Te, nil)
	D, k := validate(Te, C, Dist, Bounds{Lower: V(2), Upper: V(200)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
	assert.Equal(Te, "2.000", D.Lower)
	assert.Empty(Te, D.Upper)

	//nothing left
	D, k = validate(Te, C, Dist, Bounds{Upper: V(200)})
	assert.Nil(Te, D)
	assert.Equal(Te, []string{RangeWarning, MissingData}, k)

	C.opts.OmitDistLimitOutlier = false
	D, k = validate(Te, C, Dist, Bounds{Lower: V(2), Upper: V(200)})
	assert.Nil(Te, D)
	assert.Equal(Te, []string{RangeError}, k)

	D, _ = validate(Te, C, Dist, Bounds{Upper: V(0)})
	assert.Nil(Te, D)
	C.opts.AllowZeroUpperLimit = true
	D, k = validate(Te, C, Dist, Bounds{Upper: V(0)})
	require.NotNil(Te, D)
	assert.Empty(Te, k)
	assert.Equal(Te, "0.000", D.Upper)
}

func TestValidateLowerClass(Te *testing.T) {
	C := newContext(Te, nil)
	//lower limits may sit on the error minimum, upper ones may not
	D, k := validate(Te, C, Dist, Bounds{Lower: V(0), Upper: V(3)})
	require.NotNil(Te, D)
	assert.Empty(Te, k)
	assert.Equal(Te, "0.000", D.Lower)
	assert.Equal(Te, "3.000", D.Upper)

	D, k = validate(Te, C, Dist, Bounds{Lower: V(-0.5), Upper: V(3)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
	assert.Empty(Te, D.Lower)
}

func TestValidateCompress(Te *testing.T) {
	C := newContext(Te, nil)
	D, _ := validate(Te, C, Dist, Bounds{Target: V(7), Lower: V(6.95), Upper: V(7.05)})
	require.NotNil(Te, D)
	assert.Equal(Te, map[string]string{"upper_limit": "7.050", "potential": "square", "average": "r-6"}, D.Map())

	D, _ = validate(Te, C, Dist, Bounds{Target: V(0.9), Lower: V(0.85), Upper: V(0.95)})
	require.NotNil(Te, D)
	assert.Equal(Te, "0.850", D.Lower)
	assert.Empty(Te, D.Target)
	assert.Empty(Te, D.Upper)

	D, _ = validate(Te, C, Dist, Bounds{Target: V(3), Lower: V(2.95), Upper: V(3.05)})
	require.NotNil(Te, D)
	assert.Equal(Te, "3.000", D.Target)
	assert.Equal(Te, "2.950", D.Lower)
}

func TestValidateAngles(Te *testing.T) {
	C := newContext(Te, nil)
	//the range crosses 180
	D, k := validate(Te, C, Dihed, Bounds{Lower: V(170), Upper: V(-170)})
	require.NotNil(Te, D)
	assert.Empty(Te, k)
	assert.Equal(Te, "170", D.Lower)
	assert.Equal(Te, "190", D.Upper)
	assert.True(Te, D.PlaneLike)

	D, k = validate(Te, C, Ang, Bounds{Target: V(-540), Lower: V(-550), Upper: V(-530)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
	assert.Equal(Te, "-180", D.Target)
	assert.Equal(Te, "-190", D.Lower)
	assert.Equal(Te, "-170", D.Upper)

	//only some values beyond the threshold: not shifted
	D, k = validate(Te, C, Dihed, Bounds{Lower: V(300), Upper: V(350)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
	assert.Equal(Te, "350", D.Upper)
	assert.False(Te, D.PlaneLike)
}

func TestValidateWarnings(Te *testing.T) {
	C := newContext(Te, nil)
	D, k := validate(Te, C, RDC, Bounds{Target: V(220)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
	assert.Equal(Te, "220", D.Target)
	assert.Equal(Te, 220.0, D.Values().Target.V)

	D, k = validate(Te, C, Dist, Bounds{Upper: V(120)})
	require.NotNil(Te, D)
	assert.Equal(Te, []string{RangeWarning}, k)
}

func TestEnvelopes(Te *testing.T) {
	for sub, E := range envelopes {
		assert.Less(Te, E.ErrorMin, E.WarnMin+1e-9, sub)
		assert.Greater(Te, E.ErrorMax, E.WarnMax, sub)
		assert.True(Te, E.Error(E.ErrorMax), sub)
		assert.False(Te, E.Warn((E.WarnMin+E.WarnMax)/2), sub)
	}
}
