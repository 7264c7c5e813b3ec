package hier_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gearsim/hier"
	"github.com/sarchlab/gearsim/typing"
)

var _ = Describe("Graph", func() {
	var g *hier.Graph

	BeforeEach(func() {
		g = hier.NewGraph()
	})

	It("connects an out-port to an in-port through an interface", func() {
		producer := g.AddChild(g.Root(), "producer")
		consumer := g.AddChild(g.Root(), "consumer")

		out := g.AddOutPort(producer, "dout")
		in := g.AddInPort(consumer, "din")

		iface := g.NewInterface(typing.Mk(typing.KindUint, typing.IntArg(8)))
		Expect(g.Connect(out, iface)).To(Succeed())
		Expect(g.Connect(in, iface)).To(Succeed())

		Expect(g.Valid(producer)).To(Succeed())
		Expect(g.Valid(consumer)).To(Succeed())
	})

	It("rejects a second producer on the same interface", func() {
		a := g.AddChild(g.Root(), "a")
		b := g.AddChild(g.Root(), "b")
		outA := g.AddOutPort(a, "dout")
		outB := g.AddOutPort(b, "dout")

		iface := g.NewInterface(typing.Mk(typing.KindUint, typing.IntArg(8)))
		Expect(g.Connect(outA, iface)).To(Succeed())
		Expect(g.Connect(outB, iface)).NotTo(Succeed())
	})

	It("leaves no dangling references after Remove", func() {
		producer := g.AddChild(g.Root(), "producer")
		consumer := g.AddChild(g.Root(), "consumer")

		out := g.AddOutPort(producer, "dout")
		in := g.AddInPort(consumer, "din")
		iface := g.NewInterface(typing.Mk(typing.KindUint, typing.IntArg(8)))
		Expect(g.Connect(out, iface)).To(Succeed())
		Expect(g.Connect(in, iface)).To(Succeed())

		g.Remove(producer)

		Expect(g.Interface(iface).Producer).To(Equal(hier.PortID(-1)))
		Expect(g.Node(g.Root()).Children).NotTo(ContainElement(producer))

		// Disconnect is idempotent.
		g.Disconnect(out)
	})

	It("mangles long paths with SHA1-8 middle compression", func() {
		long := strings.Repeat("a/", 60) + "leaf"
		name := hier.PathName(long)
		Expect(len(name)).To(BeNumerically("<", len(strings.ReplaceAll(long, "/", "_"))))
		Expect(name).To(ContainSubstring("_"))
	})

	It("leaves short paths merely slash-mangled", func() {
		Expect(hier.PathName("top/child")).To(Equal("top_child"))
	})
})
