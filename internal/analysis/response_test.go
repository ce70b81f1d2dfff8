package analysis_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/autopilot/internal/analysis"
	"github.com/san-kum/autopilot/internal/control"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/integrators"
	"github.com/san-kum/autopilot/internal/models"
)

func proofResult() *dynamo.Result {
	sim := dynamo.New(models.NewAutopilotPlant(), integrators.NewRK45(), control.NewAutopilotFeedback())
	res, err := sim.Run(context.Background(), dynamo.State{1.0, 2.0}, dynamo.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("Response", func() {
	It("measures overshoot and settling", func() {
		times := []float64{0, 1, 2, 3, 4}
		ys := []float64{0, 1.2, 0.9, 1.01, 1.0}

		r, err := analysis.Response(times, ys, analysis.DefaultSettlingBand)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.FinalValue).To(Equal(1.0))
		Expect(r.Peak).To(Equal(1.2))
		Expect(r.PeakTime).To(Equal(1.0))
		Expect(r.Overshoot).To(BeNumerically("~", 0.2, 1e-12))
		Expect(r.SettlingTime).To(Equal(3.0))
	})

	It("reports no overshoot for a monotone approach", func() {
		r, err := analysis.Response([]float64{0, 1, 2}, []float64{0, 0.5, 1}, 0.02)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Overshoot).To(BeZero())
		Expect(r.Peak).To(Equal(1.0))
		Expect(r.SettlingTime).To(Equal(2.0))
	})

	It("handles a constant series", func() {
		r, err := analysis.Response([]float64{0, 1}, []float64{3, 3}, 0.02)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Overshoot).To(BeZero())
		Expect(r.SettlingTime).To(BeZero())
	})

	It("rejects mismatched series", func() {
		_, err := analysis.Response([]float64{0}, nil, 0.02)
		Expect(err).To(MatchError(analysis.ErrEmptySeries))
	})

	It("settles the proof trajectory on the closed-loop equilibrium", func() {
		res := proofResult()
		r, err := analysis.Response(res.Times, res.Component(0), analysis.DefaultSettlingBand)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.FinalValue).To(BeNumerically("~", 0.5, 1e-3))
		Expect(r.SettlingTime).To(BeNumerically(">", 0))
		Expect(r.SettlingTime).To(BeNumerically("<", 20))
	})
})

var _ = Describe("Resample", func() {
	It("interpolates onto a uniform grid", func() {
		ts, ys := analysis.Resample([]float64{0, 1, 3}, []float64{0, 1, 3}, 4)
		Expect(ts).To(Equal([]float64{0, 1, 2, 3}))
		for i := range ys {
			Expect(ys[i]).To(BeNumerically("~", ts[i], 1e-12))
		}
	})

	It("returns nil for unusable input", func() {
		ts, ys := analysis.Resample(nil, nil, 10)
		Expect(ts).To(BeNil())
		Expect(ys).To(BeNil())
	})
})

var _ = Describe("DominantFrequency", func() {
	It("recovers a pure tone", func() {
		var times, ys []float64
		for i := 0; i <= 2000; i++ {
			t := float64(i) * 0.01
			times = append(times, t)
			ys = append(ys, math.Sin(2*math.Pi*0.5*t))
		}

		f, err := analysis.DominantFrequency(times, ys, 1024)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", 0.5, 0.05))
	})

	It("matches the damped frequency of the closed loop", func() {
		res := proofResult()
		f, err := analysis.DominantFrequency(res.Times, res.Component(0), 1024)
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(BeNumerically("~", math.Sqrt(2-0.55*0.55)/(2*math.Pi), 0.05))
	})

	It("rejects short series", func() {
		_, err := analysis.DominantFrequency([]float64{0}, []float64{1}, 1024)
		Expect(err).To(MatchError(analysis.ErrEmptySeries))
	})
})

var _ = Describe("PhasePortrait", func() {
	It("pairs components of every state", func() {
		states := []dynamo.State{{1, 2}, {0.5, -1}, {0, 0}}
		p, err := analysis.NewPhasePortrait(states, 0, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Points).To(Equal([]analysis.Point{{X: 1, Y: 2}, {X: 0.5, Y: -1}, {X: 0, Y: 0}}))

		minX, maxX, minY, maxY := p.Bounds()
		Expect([]float64{minX, maxX, minY, maxY}).To(Equal([]float64{0, 1, -1, 2}))
	})

	It("widens degenerate bounds", func() {
		p, err := analysis.NewPhasePortrait([]dynamo.State{{1, 1}}, 0, 1)
		Expect(err).NotTo(HaveOccurred())
		minX, maxX, _, _ := p.Bounds()
		Expect(maxX - minX).To(Equal(1.0))
	})

	It("rejects out-of-range axes", func() {
		_, err := analysis.NewPhasePortrait([]dynamo.State{{1, 1}}, 0, 2)
		Expect(err).To(MatchError(ContainSubstring("axes")))
	})
})
