package clerk_test

import (
	"encoding/json"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/clerk"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/idalloc"
	"github.com/azraelhq/azrael/igor"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/registry"
	"github.com/azraelhq/azrael/wire"
)

func reply(raw []byte) wire.Reply {
	var r wire.Reply
	Expect(json.Unmarshal(raw, &r)).To(Succeed())
	return r
}

var _ = Describe("Gateway", func() {
	var (
		kv   *kvs.Store
		gw   *clerk.Gateway
		cmdq *cmdqueue.Queue
	)

	BeforeEach(func() {
		var err error
		kv, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())

		as := assets.NewLocal()
		reg := registry.New(kv, as)
		alloc, err := idalloc.New(kv)
		Expect(err).NotTo(HaveOccurred())
		cmdq = cmdqueue.New(kv)
		objs := objstore.New(kv, reg, as, alloc, cmdq)
		ig, err := igor.New(kv)
		Expect(err).NotTo(HaveOccurred())

		gw = clerk.New(reg, objs, ig, cmdq)
	})

	AfterEach(func() {
		Expect(kv.Close()).To(Succeed())
	})

	It("replies pong to ping", func() {
		r := reply(gw.Handle([]byte(`{"cmd":"ping","data":{}}`)))
		Expect(r.OK).To(BeTrue())
		Expect(r.Data).To(HaveKeyWithValue("pong", "clerk"))
	})

	It("rejects malformed JSON", func() {
		r := reply(gw.Handle([]byte(`not json`)))
		Expect(r.OK).To(BeFalse())
		Expect(r.Msg).To(ContainSubstring("malformed request"))
	})

	It("rejects an unknown command", func() {
		r := reply(gw.Handle([]byte(`{"cmd":"bogus","data":{}}`)))
		Expect(r.OK).To(BeFalse())
		Expect(r.Msg).To(ContainSubstring("unknown cmd"))
	})

	It("round-trips add_templates then spawn", func() {
		tpl, err := aztype.NewTemplateBuilder("box", aztype.DefaultRigidBody()).Build()
		Expect(err).NotTo(HaveOccurred())
		tplJSON, err := json.Marshal(tpl)
		Expect(err).NotTo(HaveOccurred())

		addReq := []byte(`{"cmd":"add_templates","data":{"templates":[` + string(tplJSON) + `]}}`)
		r := reply(gw.Handle(addReq))
		Expect(r.OK).To(BeTrue())

		spawnReq := []byte(`{"cmd":"spawn","data":{"specs":[{"template_id":"box"}]}}`)
		r = reply(gw.Handle(spawnReq))
		Expect(r.OK).To(BeTrue())
		data := r.Data.(map[string]any)
		ids := data["obj_ids"].([]any)
		Expect(ids).To(HaveLen(1))
	})

	It("clamps booster force through control_parts", func() {
		rb := aztype.DefaultRigidBody()
		booster, err := aztype.NewBooster(aztype.Vec3{1, 0, 0}, aztype.Vec3{0, 0, 1}, 0, 5, 0)
		Expect(err).NotTo(HaveOccurred())
		tpl, err := aztype.NewTemplateBuilder("ship", rb).WithBooster("main", booster).Build()
		Expect(err).NotTo(HaveOccurred())
		tplJSON, _ := json.Marshal(tpl)

		r := reply(gw.Handle([]byte(`{"cmd":"add_templates","data":{"templates":[` + string(tplJSON) + `]}}`)))
		Expect(r.OK).To(BeTrue())

		r = reply(gw.Handle([]byte(`{"cmd":"spawn","data":{"specs":[{"template_id":"ship"}]}}`)))
		Expect(r.OK).To(BeTrue())
		ids := r.Data.(map[string]any)["obj_ids"].([]any)
		objID := ids[0].(string)

		r = reply(gw.Handle([]byte(`{"cmd":"control_parts","data":{"obj_id":"` + objID + `","cmd_boosters":{"main":100}}}`)))
		Expect(r.OK).To(BeTrue(), r.Msg)

		drained, err := cmdq.DequeueCommands()
		Expect(err).NotTo(HaveOccurred())
		Expect(drained.BoosterForce).To(HaveLen(1))
		Expect(drained.BoosterForce[0].Force).To(Equal(aztype.Vec3{0, 0, 5}))
		Expect(drained.BoosterForce[0].Torque).To(Equal(aztype.Vec3{0, -5, 0}))
	})

	It("rejects control_parts for an unknown object", func() {
		r := reply(gw.Handle([]byte(`{"cmd":"control_parts","data":{"obj_id":"nope","cmd_boosters":{"main":1}}}`)))
		Expect(r.OK).To(BeFalse())
	})

	It("serves concurrent Handle calls without deadlocking", func() {
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				r := reply(gw.Handle([]byte(`{"cmd":"ping","data":{}}`)))
				Expect(r.OK).To(BeTrue())
			}()
		}
		wg.Wait()
	})
})
