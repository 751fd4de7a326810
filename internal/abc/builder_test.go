package abc_test

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/san-kum/fdtdabc/internal/abc"
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

var _ = Describe("Builder", func() {
	var (
		geo     *geometry.Collection
		op      *mesh.Operator
		builder *abc.Builder[float64]
		hook    *test.Hook
	)

	BeforeEach(func() {
		geo = geometry.NewCollection()
		op = magicOperator(cubeMesh())

		var logger *logrus.Logger
		logger, hook = test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)
		builder = abc.NewBuilder[float64]()
		builder.Log = logger
	})

	warnings := func() int {
		n := 0
		for _, e := range hook.AllEntries() {
			if e.Level == logrus.WarnLevel {
				n++
			}
		}
		return n
	}

	It("accepts a sheet and derives its layout", func() {
		box := xSheet(0)
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(box))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(HaveLen(1))

		s := cfg.Sheets[0]
		Expect(s.AxisOrder).To(Equal([3]int{0, 1, 2}))
		Expect(s.NormalSign).To(Equal(1))
		Expect(s.Start).To(Equal(dynamo.Index{0, 0, 0}))
		Expect(s.Stop).To(Equal(dynamo.Index{0, 4, 4}))
		Expect(s.CellCounts).To(Equal([2]int{4, 4}))
		Expect(s.TotalCells).To(Equal(16))
		Expect(s.ShiftV).To(Equal(1))
		Expect(s.K1[0]).To(HaveLen(16))
		Expect(s.K2[0]).To(BeNil())
		Expect(box.Used()).To(BeTrue())

		Expect(diags).To(HaveLen(1))
		Expect(diags[0].Kind).To(Equal(abc.DiagVacuumFallback))
		Expect(diags[0].Skipped()).To(BeFalse())
		Expect(s.PhaseVelocity).To(Equal(dynamo.C0))
	})

	DescribeTable("rotates the axis order cyclically from the normal",
		func(start, stop [3]float64, want [3]int) {
			geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).
				AddPrimitive(geometry.NewBox(start, stop)))

			cfg, _, err := builder.Build(geo, op)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Sheets).To(HaveLen(1))
			Expect(cfg.Sheets[0].AxisOrder).To(Equal(want))
		},
		Entry("x normal", [3]float64{3, 0, 0}, [3]float64{3, 4, 4}, [3]int{0, 1, 2}),
		Entry("y normal", [3]float64{0, 2, 0}, [3]float64{10, 2, 4}, [3]int{1, 2, 0}),
		Entry("z normal", [3]float64{0, 0, 2}, [3]float64{10, 4, 2}, [3]int{2, 0, 1}),
	)

	It("gives K1 = 0 when v*dt equals the spacing", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(0)))

		cfg, _, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		for _, k := range cfg.Sheets[0].K1 {
			for _, v := range k {
				Expect(v).To(BeNumerically("~", 0, 1e-12))
			}
		}
	})

	It("computes K1 and K2 from the phase velocity", func() {
		abs := geometry.NewAbsorbingBC("abs", geometry.FirstOrderMurSuperAbsorbing)
		abs.PhaseVelocity = dynamo.C0 / 2
		geo.Add(abs.AddPrimitive(xSheet(5)))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(diags).To(BeEmpty())

		s := cfg.Sheets[0]
		vdt, delta := 0.5e-3, 1e-3
		Expect(s.K1[1][7]).To(BeNumerically("~", (vdt-delta)/(vdt+delta), 1e-12))
		Expect(s.K2[0][3]).To(BeNumerically("~", vdt/delta, 1e-12))
		Expect(s.K2[1]).To(HaveLen(16))
	})

	It("shifts the evaluation point half a cell at the domain edges", func() {
		m, err := mesh.New(1e-3, []float64{0, 1, 3, 6, 10}, mesh.Uniform(0, 4, 4), mesh.Uniform(0, 4, 4))
		Expect(err).NotTo(HaveOccurred())
		op, err := mesh.NewOperator(m, 1e-3/dynamo.C0)
		Expect(err).NotTo(HaveOccurred())

		low := geometry.NewAbsorbingBC("low", geometry.FirstOrderMur).AddPrimitive(xSheet(0))
		mid := geometry.NewAbsorbingBC("mid", geometry.FirstOrderMur).AddPrimitive(xSheet(3))
		high := geometry.NewAbsorbingBC("high", geometry.FirstOrderMur).AddPrimitive(xSheet(10))
		high.NormalSignPositive = false
		geo.Add(low)
		geo.Add(mid)
		geo.Add(high)

		cfg, _, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(HaveLen(3))

		Expect(cfg.Sheets[0].Spacing).To(BeNumerically("~", 1e-3, 1e-15))
		Expect(cfg.Sheets[1].Spacing).To(BeNumerically("~", 2.5e-3, 1e-15))
		Expect(cfg.Sheets[2].Spacing).To(BeNumerically("~", 4e-3, 1e-15))

		Expect(cfg.Sheets[0].K1[0][0]).To(BeNumerically("~", 0, 1e-12))
		Expect(cfg.Sheets[1].K1[0][0]).To(BeNumerically("~", (1.0-2.5)/(1.0+2.5), 1e-12))
		Expect(cfg.Sheets[2].K1[0][0]).To(BeNumerically("~", (1.0-4.0)/(1.0+4.0), 1e-12))
	})

	It("derives the shifted indices from the normal sign", func() {
		plus := geometry.NewAbsorbingBC("plus", geometry.FirstOrderMurSuperAbsorbing).AddPrimitive(xSheet(0))
		minus := geometry.NewAbsorbingBC("minus", geometry.FirstOrderMurSuperAbsorbing).AddPrimitive(xSheet(10))
		minus.NormalSignPositive = false
		geo.Add(plus)
		geo.Add(minus)

		cfg, _, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(HaveLen(2))

		p, m := cfg.Sheets[0], cfg.Sheets[1]
		Expect([3]int{p.ShiftV, p.BaseI, p.ShiftI}).To(Equal([3]int{1, 0, 1}))
		Expect(m.NormalSign).To(Equal(-1))
		Expect([3]int{m.ShiftV, m.BaseI, m.ShiftI}).To(Equal([3]int{9, 9, 8}))
	})

	It("skips primitives that are not sheets", func() {
		volume := geometry.NewBox([3]float64{0, 0, 0}, [3]float64{2, 4, 4})
		line := geometry.NewBox([3]float64{0, 0, 0}, [3]float64{0, 0, 4})
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(volume).AddPrimitive(line))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(HaveLen(2))
		Expect(diags[0].Kind).To(Equal(abc.DiagNotASheet))
		Expect(diags[1].Kind).To(Equal(abc.DiagNotASheet))
		Expect(volume.Used()).To(BeFalse())
		Expect(warnings()).To(Equal(2))
	})

	It("skips non-box primitives with a warning", func() {
		cyl := geometry.NewCylinder([3]float64{0, 0, 0}, [3]float64{0, 0, 4}, 1)
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(cyl))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagNotABox)))
		Expect(warnings()).To(Equal(1))
	})

	It("skips boxes outside the domain silently", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(20)))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagOutsideDomain)))
		Expect(warnings()).To(BeZero())
	})

	It("skips point boxes with a warning", func() {
		point := geometry.NewBox([3]float64{3, 2, 2}, [3]float64{3, 2, 2})
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(point))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagSnapFailed)))
		Expect(diags[0].Message).To(ContainSubstring("status 0"))
		Expect(diags[0].Skipped()).To(BeTrue())
		Expect(point.Used()).To(BeFalse())
		Expect(warnings()).To(Equal(1))
	})

	It("skips boxes with non-finite coordinates with a warning", func() {
		bad := geometry.NewBox([3]float64{0, 0, 0}, [3]float64{0, math.NaN(), 4})
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(bad))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagSnapFailed)))
		Expect(diags[0].Message).To(ContainSubstring("status -1"))
		Expect(bad.Used()).To(BeFalse())
		Expect(warnings()).To(Equal(1))
	})

	It("skips sheets whose neighbour line lies outside the mesh", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(10)))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagNeighborOutside)))
	})

	It("skips sheets without a boundary type", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.BoundaryUndefined).AddPrimitive(xSheet(0)))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(ConsistOf(HaveField("Kind", abc.DiagUndefinedType)))
	})

	It("fails the whole build on a property of the wrong kind", func() {
		geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur).AddPrimitive(xSheet(0)))
		geo.Add(oddProperty{})

		cfg, _, err := builder.Build(geo, op)
		Expect(cfg).To(BeNil())
		Expect(err).To(MatchError(dynamo.ErrPropertyKind))

		var be *dynamo.BuildError
		Expect(err).To(BeAssignableToTypeOf(be))
	})

	It("ignores properties of other types", func() {
		geo.Add(geometry.NewBasic("pec", geometry.PropMetal).AddPrimitive(xSheet(0)))

		cfg, diags, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Sheets).To(BeEmpty())
		Expect(diags).To(BeEmpty())
	})

	It("carries thread count and start timestep into the configuration", func() {
		builder.Threads = 3
		builder.StartTimestep = 7

		cfg, _, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Threads).To(Equal(3))
		Expect(cfg.StartTimestep).To(Equal(uint(7)))
	})

	It("reports the sheet statistics", func() {
		abs := geometry.NewAbsorbingBC("abs", geometry.FirstOrderMur)
		abs.AddPrimitive(xSheet(0)).AddPrimitive(geometry.NewBox([3]float64{0, 0, 0}, [3]float64{10, 4, 0}))
		geo.Add(abs)

		cfg, _, err := builder.Build(geo, op)
		Expect(err).NotTo(HaveOccurred())

		var buf bytes.Buffer
		Expect(cfg.WriteStat(&buf)).To(Succeed())
		Expect(buf.String()).To(HavePrefix("Number of absorbing BCs: 2 total cells: 56\n"))
		Expect(buf.String()).To(ContainSubstring("abs#1 mur_1st normal=z+1 cells=10x4"))
	})

	Describe("Clone", func() {
		It("returns an independent deep copy", func() {
			geo.Add(geometry.NewAbsorbingBC("abs", geometry.FirstOrderMurSuperAbsorbing).AddPrimitive(xSheet(0)))
			cfg, _, err := builder.Build(geo, op)
			Expect(err).NotTo(HaveOccurred())

			orig := cfg.Sheets[0].K1[0][0]
			origK2 := cfg.Sheets[0].K2[1][0]

			c := cfg.Clone()
			Expect(c).To(Equal(cfg))

			c.Sheets[0].K1[0][0] = 42
			c.Sheets[0].K2[1][0] = 42
			c.Sheets[0].Start[1] = 3
			c.Sheets = append(c.Sheets, c.Sheets[0])
			c.Threads = 9

			Expect(cfg.Sheets).To(HaveLen(1))
			Expect(cfg.Sheets[0].K1[0][0]).To(Equal(orig))
			Expect(cfg.Sheets[0].K2[1][0]).To(Equal(origK2))
			Expect(cfg.Sheets[0].Start[1]).To(Equal(0))
			Expect(cfg.Threads).To(Equal(1))
		})
	})
})
