package analysis_test

import (
	"errors"
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/autopilot/internal/analysis"
	"github.com/san-kum/autopilot/internal/control"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/models"
)

var _ = Describe("Closed-loop stability", func() {
	var (
		plant *models.LinearPlant
		ctrl  *control.StateFeedback
	)

	BeforeEach(func() {
		plant = models.NewAutopilotPlant()
		ctrl = control.NewAutopilotFeedback()
	})

	It("forms A - BK", func() {
		acl, err := analysis.ClosedLoopMatrix(plant.A, plant.B, ctrl.K)
		Expect(err).NotTo(HaveOccurred())
		Expect(models.Rows(acl)).To(Equal([][]float64{{0, 1}, {-2, -1.1}}))
	})

	It("finds a stable complex pair", func() {
		acl, err := analysis.ClosedLoopMatrix(plant.A, plant.B, ctrl.K)
		Expect(err).NotTo(HaveOccurred())

		vals, err := analysis.Eigenvalues(acl)
		Expect(err).NotTo(HaveOccurred())
		Expect(vals).To(HaveLen(2))

		for _, v := range vals {
			Expect(real(v)).To(BeNumerically("~", -0.55, 1e-9))
			Expect(math.Abs(imag(v))).To(BeNumerically("~", math.Sqrt(2-0.55*0.55), 1e-9))
		}
		Expect(imag(vals[0]) + imag(vals[1])).To(BeNumerically("~", 0, 1e-9))
		Expect(analysis.IsHurwitz(vals)).To(BeTrue())
	})

	It("places the equilibrium at half the setpoint", func() {
		eq, err := analysis.Equilibrium(plant.A, plant.B, ctrl.K, ctrl.Setpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(eq).To(HaveLen(2))
		Expect(eq[0]).To(BeNumerically("~", 0.5, 1e-12))
		Expect(eq[1]).To(BeNumerically("~", 0, 1e-12))
	})

	It("reports the equilibrium without negative zeros", func() {
		eq, err := analysis.Equilibrium(plant.A, plant.B, ctrl.K, ctrl.Setpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(fmt.Sprintf("%.6g", []float64(eq))).To(Equal("[0.5 0]"))
		for _, v := range eq {
			if v == 0 {
				Expect(math.Signbit(v)).To(BeFalse())
			}
		}
	})

	It("summarizes the modes", func() {
		report, err := analysis.Analyze(plant.A, plant.B, ctrl.K, ctrl.Setpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Stable).To(BeTrue())
		Expect(report.Modes).To(HaveLen(2))

		m := report.Modes[0]
		Expect(m.NaturalFrequency).To(BeNumerically("~", math.Sqrt2, 1e-9))
		Expect(m.DampingRatio).To(BeNumerically("~", 0.55/math.Sqrt2, 1e-9))
		Expect(m.TimeConstant).To(BeNumerically("~", 1/0.55, 1e-9))
		Expect(m.DampedFrequency).To(BeNumerically("~", math.Sqrt(2-0.55*0.55)/(2*math.Pi), 1e-9))
		Expect(report.Equilibrium[0]).To(BeNumerically("~", 0.5, 1e-12))
	})

	It("flags a saddle as not Hurwitz", func() {
		a := mat.NewDense(2, 2, []float64{0, 1, 1, 0})
		b := mat.NewDense(2, 1, []float64{0, 1})
		k := mat.NewDense(1, 2, nil)

		report, err := analysis.Analyze(a, b, k, dynamo.State{0, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Stable).To(BeFalse())
		Expect(analysis.SpectralAbscissa(report.Eigenvalues)).To(BeNumerically("~", 1, 1e-9))
	})

	It("reports a singular closed loop", func() {
		a := mat.NewDense(2, 2, nil)
		b := mat.NewDense(2, 1, []float64{0, 1})
		k := mat.NewDense(1, 2, nil)

		_, err := analysis.Equilibrium(a, b, k, dynamo.State{1, 0})
		Expect(err).To(HaveOccurred())

		report, err := analysis.Analyze(a, b, k, dynamo.State{1, 0})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Equilibrium).To(BeNil())
		Expect(report.Stable).To(BeFalse())
	})

	It("rejects mismatched gains", func() {
		k := mat.NewDense(1, 3, []float64{1, 1, 1})
		_, err := analysis.ClosedLoopMatrix(plant.A, plant.B, k)
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())

		_, err = analysis.Equilibrium(plant.A, plant.B, ctrl.K, dynamo.State{1})
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})

	It("treats an empty spectrum as not Hurwitz", func() {
		Expect(analysis.IsHurwitz(nil)).To(BeFalse())
	})
})
