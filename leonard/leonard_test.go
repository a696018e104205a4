package leonard_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/assets"
	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/idalloc"
	"github.com/azraelhq/azrael/kvs"
	"github.com/azraelhq/azrael/leonard"
	"github.com/azraelhq/azrael/objstore"
	"github.com/azraelhq/azrael/registry"
)

var _ = Describe("Worker", func() {
	var (
		kv    *kvs.Store
		objs  *objstore.Store
		queue *cmdqueue.Queue
		w     *leonard.Worker
	)

	BeforeEach(func() {
		var err error
		kv, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		as := assets.NewLocal()
		reg := registry.New(kv, as)
		alloc, err := idalloc.New(kv)
		Expect(err).NotTo(HaveOccurred())
		queue = cmdqueue.New(kv)
		objs = objstore.New(kv, reg, as, alloc, queue)
		w = leonard.New(objs, queue, time.Second)

		tpl, err := aztype.NewTemplateBuilder("box", aztype.DefaultRigidBody()).Build()
		Expect(err).NotTo(HaveOccurred())
		_, err = reg.AddTemplates([]aztype.Template{tpl})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(kv.Close()).To(Succeed())
	})

	spawnOne := func() string {
		ids, err := objs.Spawn([]objstore.SpawnSpec{{TemplateID: "box"}})
		Expect(err).NotTo(HaveOccurred())
		return ids[0]
	}

	It("applies a queued spawn to its world and writes it back unchanged absent any force", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		Expect(rbs[id]).NotTo(BeNil())
		Expect(rbs[id].Position).To(Equal(aztype.Vec3{}))
	})

	It("integrates a world-frame direct force into position over one tick", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		Expect(queue.AddDirectForce(aztype.CmdForceData{ObjID: id, Force: aztype.Vec3{1, 0, 0}})).To(Succeed())
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		// imass=1, dt=1s: dv=1, velocity becomes 1 then position += 1*dt = 1.
		Expect(rbs[id].VelocityLin[0]).To(BeNumerically("~", 1, 1e-9))
		Expect(rbs[id].Position[0]).To(BeNumerically("~", 1, 1e-9))
	})

	It("rotates a local-frame booster force by the body's current orientation", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		quarterTurnAboutZ := aztype.Quat{0, 0, 0.70710678, 0.70710678}
		rot := quarterTurnAboutZ
		missing, err := objs.SetRigidBodies(map[string]aztype.RigidBodyPatch{id: {Rotation: &rot}})
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
		Expect(w.Tick()).To(Succeed())

		Expect(queue.AddBoosterForce(aztype.CmdForceData{ObjID: id, Force: aztype.Vec3{1, 0, 0}})).To(Succeed())
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		// a +x local force rotated 90deg about z becomes world +y, not +x.
		Expect(rbs[id].VelocityLin[0]).To(BeNumerically("~", 0, 1e-6))
		Expect(rbs[id].VelocityLin[1]).To(BeNumerically("~", 1, 1e-6))
	})

	It("does not move along a locked linear axis despite accumulated velocity", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		locked := aztype.Vec3{0, 1, 1}
		missing, err := objs.SetRigidBodies(map[string]aztype.RigidBodyPatch{id: {AxesLockLin: &locked}})
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
		Expect(w.Tick()).To(Succeed())

		Expect(queue.AddDirectForce(aztype.CmdForceData{ObjID: id, Force: aztype.Vec3{1, 0, 0}})).To(Succeed())
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		Expect(rbs[id].VelocityLin[0]).To(BeNumerically("~", 1, 1e-9))
		Expect(rbs[id].Position[0]).To(BeNumerically("~", 0, 1e-9), "locked axis must not accumulate position")
	})

	It("drops a body from its world on a queued remove", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		Expect(objs.RemoveObjects([]string{id})).To(Succeed())
		Expect(w.Tick()).To(Succeed())

		Expect(queue.AddDirectForce(aztype.CmdForceData{ObjID: id, Force: aztype.Vec3{1, 0, 0}})).To(Succeed())
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		Expect(rbs[id]).To(BeNil())
	})

	It("applies a queued modify from setRigidBodies and writes the patched state back", func() {
		id := spawnOne()
		Expect(w.Tick()).To(Succeed())

		newScale := 3.0
		missing, err := objs.SetRigidBodies(map[string]aztype.RigidBodyPatch{id: {Scale: &newScale}})
		Expect(err).NotTo(HaveOccurred())
		Expect(missing).To(BeEmpty())
		Expect(w.Tick()).To(Succeed())

		rbs, err := objs.GetRigidBodies([]string{id})
		Expect(err).NotTo(HaveOccurred())
		Expect(rbs[id].Scale).To(Equal(3.0))
	})
})
