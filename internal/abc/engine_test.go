package abc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/fdtdabc/internal/abc"
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

var _ = Describe("Engine", func() {
	var (
		geo  *geometry.Collection
		op   *mesh.Operator
		grid *field[float64]
	)

	build := func(threads int, startTS uint) *abc.Config[float64] {
		logger, _ := test.NewNullLogger()
		b := abc.NewBuilder[float64]()
		b.Log = logger
		b.Threads = threads
		b.StartTimestep = startTS
		cfg, _, err := b.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	// withVelocity adds a sheet at x with v = C0/2, giving K1 = -1/3 on the
	// 1 mm mesh with dt = 1 mm / C0.
	withVelocity := func(name string, bt geometry.BoundaryType, x float64) {
		p := geometry.NewAbsorbingBC(name, bt)
		p.PhaseVelocity = dynamo.C0 / 2
		geo.Add(p.AddPrimitive(xSheet(x)))
	}

	const k1 = -1.0 / 3.0

	BeforeEach(func() {
		geo = geometry.NewCollection()
		op = magicOperator(cubeMesh())
		grid = newField[float64](dynamo.Index{11, 5, 5})
	})

	Describe("voltage phases", func() {
		BeforeEach(func() {
			withVelocity("abs", geometry.FirstOrderMur, 0)
			grid.fillPlane(false, 1, 0, 1)
			grid.fillPlane(false, 1, 1, 2)
			grid.fillPlane(false, 2, 0, 10)
			grid.fillPlane(false, 2, 1, 20)
		})

		It("applies the first-order Mur update on the tangential components", func() {
			eng := build(1, 0).NewEngine(grid)

			eng.PreVoltage()
			grid.fillPlane(false, 1, 1, 3)
			grid.fillPlane(false, 2, 1, 30)
			eng.PostVoltage()
			eng.ApplyVoltages()

			p := dynamo.Index{0, 2, 3}
			Expect(grid.Volt(1, p)).To(BeNumerically("~", 2-k1*1+k1*3, 1e-12))
			Expect(grid.Volt(2, p)).To(BeNumerically("~", 20-k1*10+k1*30, 1e-12))
		})

		It("leaves the upper tangential lines and the normal component alone", func() {
			grid.fillPlane(false, 0, 0, 5)
			eng := build(1, 0).NewEngine(grid)

			eng.PreVoltage()
			eng.PostVoltage()
			eng.ApplyVoltages()

			Expect(grid.Volt(1, dynamo.Index{0, 4, 2})).To(Equal(1.0))
			Expect(grid.Volt(2, dynamo.Index{0, 2, 4})).To(Equal(10.0))
			Expect(grid.Volt(0, dynamo.Index{0, 2, 2})).To(Equal(5.0))
			Expect(grid.Volt(1, dynamo.Index{0, 3, 3})).NotTo(Equal(1.0))
		})

		It("does not touch currents for a plain Mur sheet", func() {
			grid.fillPlane(true, 1, 0, 7)
			grid.fillPlane(true, 1, 1, 8)
			eng := build(1, 0).NewEngine(grid)

			eng.PreCurrent()
			eng.PostCurrent()
			eng.ApplyCurrents()

			Expect(grid.Curr(1, dynamo.Index{0, 1, 1})).To(Equal(7.0))
			Expect(grid.Curr(1, dynamo.Index{1, 1, 1})).To(Equal(8.0))
		})
	})

	Describe("activation timestep", func() {
		BeforeEach(func() {
			withVelocity("abs", geometry.FirstOrderMur, 0)
			grid.fillPlane(false, 1, 0, 1)
			grid.fillPlane(false, 1, 1, 2)
		})

		It("skips pre and post below the start timestep but still applies", func() {
			eng := build(1, 5).NewEngine(grid)
			p := dynamo.Index{0, 1, 1}

			for ts := uint(0); ts < 5; ts++ {
				grid.ts = ts
				Expect(eng.Active()).To(BeFalse())
				eng.PreVoltage()
				eng.PostVoltage()
				eng.ApplyVoltages()
				Expect(grid.Volt(1, p)).To(BeZero())
				grid.fillPlane(false, 1, 0, 1)
			}

			grid.ts = 5
			Expect(eng.Active()).To(BeTrue())
			eng.PreVoltage()
			eng.PostVoltage()
			eng.ApplyVoltages()
			Expect(grid.Volt(1, p)).To(BeNumerically("~", 2-k1+2*k1, 1e-12))

			grid.ts = 6
			Expect(eng.Active()).To(BeTrue())
		})
	})

	Describe("super-absorbing current phases", func() {
		It("blends the curl currents with the absorbing estimate", func() {
			withVelocity("sa", geometry.FirstOrderMurSuperAbsorbing, 0)
			cfg := build(1, 0)
			k2 := cfg.Sheets[0].K2[0][0]
			Expect(k2).To(BeNumerically("~", 0.5, 1e-12))

			grid.fillPlane(true, 2, 0, 1)
			grid.fillPlane(true, 2, 1, 2)
			eng := cfg.NewEngine(grid)

			eng.PreCurrent()
			grid.fillPlane(true, 2, 1, 3)
			grid.fillPlane(true, 2, 0, 5)
			eng.PostCurrent()
			eng.ApplyCurrents()

			abs := 2 - k1*1 + k1*3
			want := (5 + k2*abs) / (1 + k2)
			Expect(grid.Curr(2, dynamo.Index{0, 2, 2})).To(BeNumerically("~", want, 1e-12))
			Expect(grid.Curr(2, dynamo.Index{0, 3, 2})).To(Equal(5.0), "current loop stops one cell early")
			Expect(grid.Curr(2, dynamo.Index{1, 2, 2})).To(Equal(3.0))
		})

		It("leaves the currents of plain Mur sheets untouched", func() {
			geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(0)))
			cfg := build(1, 0)

			grid.fillPlane(true, 2, 0, 1)
			grid.fillPlane(true, 2, 1, 2)
			eng := cfg.NewEngine(grid)

			eng.PreCurrent()
			grid.fillPlane(true, 2, 0, 5)
			eng.PostCurrent()
			eng.ApplyCurrents()

			Expect(grid.Curr(2, dynamo.Index{0, 2, 2})).To(Equal(5.0))
			Expect(grid.Curr(2, dynamo.Index{1, 2, 2})).To(Equal(2.0))
		})

		It("reads the dual lines behind a negative-sign sheet", func() {
			p := geometry.NewAbsorbingBC("sa", geometry.FirstOrderMurSuperAbsorbing)
			p.PhaseVelocity = dynamo.C0 / 2
			p.NormalSignPositive = false
			geo.Add(p.AddPrimitive(xSheet(10)))
			cfg := build(1, 0)

			grid.fillPlane(true, 1, 9, 1)
			grid.fillPlane(true, 1, 8, 2)
			grid.fillPlane(false, 1, 10, 1)
			grid.fillPlane(false, 1, 9, 2)
			eng := cfg.NewEngine(grid)

			eng.PreVoltage()
			eng.PreCurrent()
			eng.PostVoltage()
			eng.PostCurrent()
			eng.ApplyVoltages()
			eng.ApplyCurrents()

			k2 := cfg.Sheets[0].K2[0][0]
			absI := 2 - k1 + 2*k1
			Expect(grid.Volt(1, dynamo.Index{10, 1, 1})).To(BeNumerically("~", 2-k1+2*k1, 1e-12))
			Expect(grid.Curr(1, dynamo.Index{9, 1, 1})).To(BeNumerically("~", (1+k2*absI)/(1+k2), 1e-12))
			Expect(grid.Curr(1, dynamo.Index{8, 1, 1})).To(Equal(2.0))
		})
	})

	Describe("perfect absorption", func() {
		It("copies the previous neighbour value onto the sheet when K1 is zero", func() {
			geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(0)))
			eng := build(1, 0).NewEngine(grid)

			grid.fillPlane(false, 2, 0, 0.25)
			grid.fillPlane(false, 2, 1, 0.75)
			eng.PreVoltage()
			grid.fillPlane(false, 2, 1, 0.5)
			eng.PostVoltage()
			eng.ApplyVoltages()

			Expect(grid.Volt(2, dynamo.Index{0, 1, 1})).To(BeNumerically("~", 0.75, 1e-12))
		})
	})

	Describe("threading", func() {
		BeforeEach(func() {
			withVelocity("a", geometry.FirstOrderMur, 0)
			withVelocity("b", geometry.FirstOrderMur, 4)
			withVelocity("c", geometry.FirstOrderMur, 8)
			for _, x := range []int{0, 4, 8} {
				grid.fillPlane(false, 1, x, 1)
				grid.fillPlane(false, 1, x+1, 2)
			}
		})

		runThread := func(eng *abc.Engine[float64], id int) {
			eng.PreVoltageThread(id)
			eng.PostVoltageThread(id)
			eng.ApplyVoltagesThread(id)
		}

		touched := func() []bool {
			out := make([]bool, 0, 3)
			for _, x := range []int{0, 4, 8} {
				out = append(out, grid.Volt(1, dynamo.Index{x, 1, 1}) != 1)
			}
			return out
		}

		It("splits sheets into contiguous blocks", func() {
			eng := build(2, 0).NewEngine(grid)
			Expect(eng.NumThreads()).To(Equal(2))

			runThread(eng, 1)
			Expect(touched()).To(Equal([]bool{false, false, true}))

			runThread(eng, 0)
			Expect(touched()).To(Equal([]bool{true, true, true}))
		})

		It("uses thread 0 for the default hooks", func() {
			eng := build(2, 0).NewEngine(grid)
			eng.PreVoltage()
			eng.PostVoltage()
			eng.ApplyVoltages()
			Expect(touched()).To(Equal([]bool{true, true, false}))
		})

		It("ignores thread ids outside the partition", func() {
			eng := build(2, 0).NewEngine(grid)
			Expect(func() { runThread(eng, 2) }).NotTo(Panic())
			Expect(func() { runThread(eng, -1) }).NotTo(Panic())
			Expect(touched()).To(Equal([]bool{false, false, false}))
		})

		It("repartitions when the thread count changes", func() {
			eng := build(1, 0).NewEngine(grid)
			eng.SetNumberOfThreads(3)
			Expect(eng.NumThreads()).To(Equal(3))

			runThread(eng, 1)
			Expect(touched()).To(Equal([]bool{false, true, false}))
		})

		It("gives the same result for any thread count", func() {
			ref := newField[float64](grid.size)
			copy(ref.volt[1], grid.volt[1])

			cfg := build(1, 0)
			one := cfg.NewEngine(ref)
			runThread(one, 0)

			many := cfg.NewEngine(grid)
			many.SetNumberOfThreads(4)
			for id := 0; id < 4; id++ {
				runThread(many, id)
			}
			Expect(grid.volt[1]).To(Equal(ref.volt[1]))
		})
	})

	It("runs in single precision", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMurSuperAbsorbing).AddPrimitive(xSheet(0)))
		logger, _ := test.NewNullLogger()
		b := abc.NewBuilder[float32]()
		b.Log = logger
		cfg, _, err := b.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())

		g := newField[float32](dynamo.Index{11, 5, 5})
		g.fillPlane(false, 1, 1, 1)
		eng := cfg.NewEngine(g)
		eng.PreVoltage()
		eng.PostVoltage()
		eng.ApplyVoltages()
		eng.PreCurrent()
		eng.PostCurrent()
		eng.ApplyCurrents()

		Expect(g.Volt(1, dynamo.Index{0, 1, 1})).To(BeNumerically("~", 1, 1e-6))
	})
})
