package registry_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmn/cos"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/registry"
)

func mustTemplate(aid string) aztype.Template {
	tpl, err := aztype.NewTemplateBuilder(aztype.AID(aid), aztype.DefaultRigidBody()).Build()
	Expect(err).NotTo(HaveOccurred())
	return tpl
}

var _ = Describe("Registry", func() {
	var (
		store *kvs.Store
		as    *assets.Local
		reg   *registry.Registry
	)

	BeforeEach(func() {
		var err error
		store, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		as = assets.NewLocal()
		reg = registry.New(store, as)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("AddTemplates", func() {
		It("inserts new templates and reports them as newly inserted", func() {
			result, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("box", true))
		})

		It("is idempotent: re-inserting the same AID reports false", func() {
			_, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())

			result, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveKeyWithValue("box", false))
		})

		It("fails the whole batch if any one template is invalid, inserting nothing", func() {
			bad := mustTemplate("box")
			bad.RB.Scale = -1

			_, err := reg.AddTemplates([]aztype.Template{mustTemplate("good"), bad})
			Expect(err).To(HaveOccurred())

			_, found, _ := storeGetRaw(store, "good")
			Expect(found).To(BeFalse())
		})

		It("returns an empty map for an empty batch", func() {
			result, err := reg.AddTemplates(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(BeEmpty())
		})
	})

	Describe("GetTemplates", func() {
		It("fails the whole call if any requested AID is missing", func() {
			_, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())

			_, err = reg.GetTemplates([]string{"box", "missing"})
			Expect(err).To(HaveOccurred())
			Expect(cos.IsErrNotFound(err)).To(BeTrue())
		})

		It("resolves a de-duplicated set of AIDs", func() {
			_, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())

			out, err := reg.GetTemplates([]string{"box", "box"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out["box"].Template.AID).To(Equal(aztype.AID("box")))
		})
	})

	Describe("GetOne", func() {
		It("resolves a single template by AID", func() {
			_, err := reg.AddTemplates([]aztype.Template{mustTemplate("box")})
			Expect(err).NotTo(HaveOccurred())

			tpl, urlFrag, err := reg.GetOne("box")
			Expect(err).NotTo(HaveOccurred())
			Expect(tpl.AID).To(Equal(aztype.AID("box")))
			Expect(urlFrag).NotTo(BeEmpty())
		})
	})

	// These templates are built as plain struct literals, the same shape
	// wire.DecodeInto produces when add_templates decodes straight off
	// the wire, bypassing aztype.NewBooster/NewFactory/NewSphereShape
	// entirely.
	Describe("AddTemplates validation of wire-decoded sub-records", func() {
		It("rejects a booster whose direction was never normalised", func() {
			tpl := mustTemplate("ship")
			tpl.Boosters = map[string]aztype.Booster{"main": {Direction: aztype.Vec3{}}}

			_, err := reg.AddTemplates([]aztype.Template{tpl})
			Expect(err).To(HaveOccurred())
		})

		It("normalises a non-unit booster direction rather than storing it as-is", func() {
			tpl := mustTemplate("ship")
			tpl.Boosters = map[string]aztype.Booster{"main": {Direction: aztype.Vec3{0, 5, 0}, MinVal: -1, MaxVal: 1}}

			_, err := reg.AddTemplates([]aztype.Template{tpl})
			Expect(err).NotTo(HaveOccurred())

			got, _, err := reg.GetOne("ship")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Boosters["main"].Direction).To(Equal(aztype.Vec3{0, 1, 0}))
		})

		It("rejects a factory whose direction was never normalised", func() {
			tpl := mustTemplate("ship")
			tpl.Factories = map[string]aztype.Factory{"launcher": {Direction: aztype.Vec3{}, ExitMin: 1, ExitMax: 5}}

			_, err := reg.AddTemplates([]aztype.Template{tpl})
			Expect(err).To(HaveOccurred())
		})

		It("rejects a collision shape with a negative radius", func() {
			tpl := mustTemplate("debris")
			tpl.RB.CShapes["s"] = aztype.CollisionShape{Kind: aztype.ShapeSphere, Radius: -1}

			_, err := reg.AddTemplates([]aztype.Template{tpl})
			Expect(err).To(HaveOccurred())
		})
	})
})

// storeGetRaw checks the store directly rather than through the
// registry, to confirm a failed AddTemplates batch left nothing
// committed.
func storeGetRaw(store *kvs.Store, aid string) (string, bool, error) {
	return store.Get("tpl:" + aid)
}
