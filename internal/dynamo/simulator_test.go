package dynamo_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/autopilot/internal/control"
	"github.com/san-kum/autopilot/internal/dynamo"
	"github.com/san-kum/autopilot/internal/integrators"
	"github.com/san-kum/autopilot/internal/models"
)

type blowUp struct{}

func (b *blowUp) StateDim() int   { return 1 }
func (b *blowUp) ControlDim() int { return 0 }
func (b *blowUp) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                                       { return "count" }
func (c *countingMetric) Observe(x dynamo.State, u dynamo.Control, t float64) { c.n++ }
func (c *countingMetric) Value() float64                                     { return float64(c.n) }
func (c *countingMetric) Reset()                                             { c.n = 0 }

type timeObserver struct{ times []float64 }

func (o *timeObserver) OnStep(x dynamo.State, u dynamo.Control, t float64) {
	o.times = append(o.times, t)
}

func newProofSimulator() *dynamo.Simulator {
	return dynamo.New(models.NewAutopilotPlant(), integrators.NewRK45(), control.NewAutopilotFeedback())
}

var _ = Describe("Simulator", func() {
	var (
		ctx context.Context
		x0  dynamo.State
		cfg dynamo.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		x0 = dynamo.State{1.0, 2.0}
		cfg = dynamo.DefaultConfig()
	})

	Describe("closed-loop vector field", func() {
		It("reduces to the plant at the desired point", func() {
			sys := dynamo.Close(models.NewAutopilotPlant(), control.NewAutopilotFeedback())
			dx := sys.Derive(dynamo.State{1, 0}, nil, 0)
			Expect(dx).To(HaveLen(2))
			Expect(dx[0]).To(BeNumerically("~", 0, 1e-15))
			Expect(dx[1]).To(BeNumerically("~", -1, 1e-15))
		})

		It("preserves dimensionality for arbitrary states", func() {
			sys := dynamo.Close(models.NewAutopilotPlant(), control.NewAutopilotFeedback())
			for _, x := range []dynamo.State{{0, 0}, {1, 2}, {-3, 7.5}, {1e6, -1e6}} {
				Expect(sys.Derive(x, nil, 0)).To(HaveLen(len(x)))
			}
		})

		It("recomputes actuation from the evaluated state", func() {
			sys := dynamo.Close(models.NewAutopilotPlant(), control.NewAutopilotFeedback())
			dx := sys.Derive(dynamo.State{1, 2}, nil, 0)
			// u = 1*(1-1) + 1*(0-2) = -2
			Expect(dx[0]).To(BeNumerically("~", 2, 1e-12))
			Expect(dx[1]).To(BeNumerically("~", -3.2, 1e-12))
		})

		It("counts derivative evaluations", func() {
			sys := dynamo.Close(models.NewAutopilotPlant(), control.NewAutopilotFeedback())
			sys.Derive(dynamo.State{1, 2}, nil, 0)
			sys.Derive(dynamo.State{0, 0}, nil, 0.5)
			Expect(sys.Evaluations()).To(Equal(2))
		})
	})

	Describe("adaptive run of the proof scenario", func() {
		var result *dynamo.Result

		BeforeEach(func() {
			var err error
			result, err = newProofSimulator().Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("samples from 0 to exactly 50", func() {
			Expect(result.Times[0]).To(Equal(0.0))
			Expect(result.Times[len(result.Times)-1]).To(Equal(50.0))
			Expect(result.States[0]).To(Equal(dynamo.State{1.0, 2.0}))
		})

		It("produces strictly increasing times bounded by the max step", func() {
			for i := 1; i < len(result.Times); i++ {
				h := result.Times[i] - result.Times[i-1]
				Expect(h).To(BeNumerically(">", 0))
				Expect(h).To(BeNumerically("<=", cfg.MaxDt+1e-12))
			}
		})

		It("keeps samples, controls and counters aligned", func() {
			Expect(result.States).To(HaveLen(len(result.Times)))
			Expect(result.Controls).To(HaveLen(len(result.Times)))
			Expect(result.StepsTaken).To(Equal(len(result.Times) - 1))
			Expect(result.StepsTaken).To(BeNumerically(">=", 500))
			Expect(result.Evaluations).To(BeNumerically(">=", 6*result.StepsTaken))
		})

		It("records the actuation applied at each sample", func() {
			for i, x := range result.States {
				want := (1 - x[0]) + (0 - x[1])
				Expect(result.Controls[i]).To(HaveLen(1))
				Expect(result.Controls[i][0]).To(BeNumerically("~", want, 1e-12))
			}
		})

		It("settles on the closed-loop equilibrium", func() {
			final := result.Final()
			Expect(final[0]).To(BeNumerically("~", 0.5, 1e-3))
			Expect(final[1]).To(BeNumerically("~", 0.0, 1e-3))
		})

		It("is deterministic", func() {
			again, err := newProofSimulator().Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Times).To(Equal(result.Times))
			Expect(again.States).To(Equal(result.States))
		})

		It("does not modify the initial state", func() {
			Expect(x0).To(Equal(dynamo.State{1.0, 2.0}))
		})
	})

	Describe("fixed-step run", func() {
		It("takes uniform steps and lands on the horizon", func() {
			cfg.Adaptive = false
			cfg.Dt = 0.1
			s := dynamo.New(models.NewAutopilotPlant(), integrators.NewRK4(), control.NewAutopilotFeedback())

			result, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Times).To(HaveLen(501))
			Expect(result.Times[len(result.Times)-1]).To(Equal(50.0))
			Expect(result.Times[1]).To(BeNumerically("~", 0.1, 1e-12))
			Expect(result.Final()[0]).To(BeNumerically("~", 0.5, 1e-3))
		})

		It("clips the last step to the horizon", func() {
			cfg.Adaptive = false
			cfg.Dt = 0.3
			cfg.Duration = 1.0
			s := dynamo.New(models.NewAutopilotPlant(), integrators.NewRK4(), control.NewAutopilotFeedback())

			result, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Times).To(HaveLen(5))
			Expect(result.Times[4]).To(Equal(1.0))
		})
	})

	Describe("adaptive run with a fixed-step integrator", func() {
		It("falls back to step doubling and stays accurate", func() {
			s := dynamo.New(models.NewAutopilotPlant(), integrators.NewRK4(), control.NewAutopilotFeedback())
			result, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Times[len(result.Times)-1]).To(Equal(50.0))
			Expect(result.Final()[0]).To(BeNumerically("~", 0.5, 1e-3))
		})
	})

	Describe("metrics and observers", func() {
		It("observes every recorded sample", func() {
			s := newProofSimulator()
			m := &countingMetric{}
			obs := &timeObserver{}
			s.AddMetric(m)
			s.AddObserver(obs)

			result, err := s.Run(ctx, x0, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Metrics).To(HaveKeyWithValue("count", float64(len(result.Times))))
			Expect(obs.times).To(Equal(result.Times))
		})
	})

	Describe("failures", func() {
		DescribeTable("rejects invalid configuration",
			func(mutate func(*dynamo.Config)) {
				mutate(&cfg)
				_, err := newProofSimulator().Run(ctx, x0, cfg)
				Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
			},
			Entry("zero duration", func(c *dynamo.Config) { c.Duration = 0 }),
			Entry("negative duration", func(c *dynamo.Config) { c.Duration = -1 }),
			Entry("negative max step", func(c *dynamo.Config) { c.MaxDt = -0.1 }),
			Entry("zero relative tolerance", func(c *dynamo.Config) { c.RelTol = 0 }),
			Entry("zero fixed dt", func(c *dynamo.Config) { c.Adaptive = false; c.Dt = 0 }),
			Entry("negative fixed dt", func(c *dynamo.Config) { c.Adaptive = false; c.Dt = -0.1 }),
			Entry("fixed dt below resolution", func(c *dynamo.Config) { c.Adaptive = false; c.Dt = 1e-300; c.MaxDt = 0 }),
			Entry("max step below resolution", func(c *dynamo.Config) { c.MaxDt = 1e-300 }),
		)

		It("rejects an initial state of the wrong size", func() {
			_, err := newProofSimulator().Run(ctx, dynamo.State{1, 2, 3}, cfg)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("stops on a canceled context", func() {
			canceled, cancel := context.WithCancel(ctx)
			cancel()

			result, err := newProofSimulator().Run(canceled, x0, cfg)
			Expect(err).To(MatchError(dynamo.ErrContextCanceled))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(result.Times).To(HaveLen(1))
		})

		It("aborts when the solution escapes to infinity", func() {
			cfg.Duration = 2
			s := dynamo.New(&blowUp{}, integrators.NewRK45(), nil)

			result, err := s.Run(ctx, dynamo.State{1}, cfg)
			Expect(err).To(Or(MatchError(dynamo.ErrStepTooSmall), MatchError(dynamo.ErrInvalidState)))

			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Time).To(BeNumerically("<", 1.0+1e-6))
			Expect(result.Times[len(result.Times)-1]).To(BeNumerically("<", 1.0))
		})
	})
})
