package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/san-kum/autopilot/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

var ErrNoConvergence = errors.New("analysis: eigen decomposition did not converge")

// ClosedLoopMatrix returns A − B·K, the system matrix under u = K·(r − x)
// once the constant reference term is moved to the right-hand side.
func ClosedLoopMatrix(a, b, k mat.Matrix) (*mat.Dense, error) {
	n, c := a.Dims()
	br, bc := b.Dims()
	kr, kc := k.Dims()
	if n != c || br != n || kr != bc || kc != n {
		return nil, fmt.Errorf("%w: A %dx%d, B %dx%d, K %dx%d",
			dynamo.ErrDimensionMismatch, n, c, br, bc, kr, kc)
	}

	var bk mat.Dense
	bk.Mul(b, k)

	acl := mat.NewDense(n, n, nil)
	acl.Sub(a, &bk)
	return acl, nil
}

// Eigenvalues returns the eigenvalues of m ordered by real part, then
// imaginary part.
func Eigenvalues(m mat.Matrix) ([]complex128, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(m, mat.EigenNone); !ok {
		return nil, ErrNoConvergence
	}

	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) < real(vals[j])
		}
		return imag(vals[i]) < imag(vals[j])
	})
	return vals, nil
}

// SpectralAbscissa is the largest real part among vals.
func SpectralAbscissa(vals []complex128) float64 {
	maxRe := math.Inf(-1)
	for _, v := range vals {
		maxRe = math.Max(maxRe, real(v))
	}
	return maxRe
}

// IsHurwitz reports whether every eigenvalue lies in the open left half-plane.
func IsHurwitz(vals []complex128) bool {
	return len(vals) > 0 && SpectralAbscissa(vals) < 0
}

// Equilibrium solves (A − B·K)·x* = −B·K·r.
func Equilibrium(a, b, k mat.Matrix, r dynamo.State) (dynamo.State, error) {
	acl, err := ClosedLoopMatrix(a, b, k)
	if err != nil {
		return nil, err
	}
	if _, kc := k.Dims(); kc != len(r) {
		return nil, fmt.Errorf("%w: setpoint has %d components, K has %d columns",
			dynamo.ErrDimensionMismatch, len(r), kc)
	}

	var kr, rhs mat.VecDense
	kr.MulVec(k, mat.NewVecDense(len(r), r.Clone()))
	rhs.MulVec(b, &kr)
	rhs.ScaleVec(-1, &rhs)

	var x mat.VecDense
	if err := x.SolveVec(acl, &rhs); err != nil {
		return nil, fmt.Errorf("analysis: closed loop has no unique equilibrium: %w", err)
	}
	eq := dynamo.State(x.RawVector().Data)
	for i, v := range eq {
		if v == 0 {
			eq[i] = 0 // drop the sign of -0
		}
	}
	return eq, nil
}

// Mode describes one eigenvalue as a second-order response.
type Mode struct {
	Eigenvalue       complex128
	NaturalFrequency float64 // |λ| in rad/s
	DampingRatio     float64
	// DampedFrequency is |Im λ| / 2π in Hz.
	DampedFrequency float64
	TimeConstant    float64
}

func NewMode(v complex128) Mode {
	wn := cmplx.Abs(v)
	m := Mode{
		Eigenvalue:       v,
		NaturalFrequency: wn,
		DampedFrequency:  math.Abs(imag(v)) / (2 * math.Pi),
		TimeConstant:     math.Inf(1),
	}
	if wn > 0 {
		m.DampingRatio = -real(v) / wn
	}
	if real(v) != 0 {
		m.TimeConstant = -1 / real(v)
	}
	return m
}

type StabilityReport struct {
	ClosedLoop  *mat.Dense
	Eigenvalues []complex128
	Modes       []Mode
	Stable      bool
	Equilibrium dynamo.State
}

// Analyze collects the closed-loop matrix, its modes and the equilibrium the
// proportional law settles on. A singular closed loop leaves Equilibrium nil.
func Analyze(a, b, k mat.Matrix, r dynamo.State) (*StabilityReport, error) {
	acl, err := ClosedLoopMatrix(a, b, k)
	if err != nil {
		return nil, err
	}

	vals, err := Eigenvalues(acl)
	if err != nil {
		return nil, err
	}

	report := &StabilityReport{
		ClosedLoop:  acl,
		Eigenvalues: vals,
		Modes:       make([]Mode, len(vals)),
		Stable:      IsHurwitz(vals),
	}
	for i, v := range vals {
		report.Modes[i] = NewMode(v)
	}

	if eq, err := Equilibrium(a, b, k, r); err == nil {
		report.Equilibrium = eq
	}

	return report, nil
}
