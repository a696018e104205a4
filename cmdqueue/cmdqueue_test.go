package cmdqueue_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/cmdqueue"
	"github.com/azraelhq/azrael/kvs"
)

var _ = Describe("Queue", func() {
	var (
		store *kvs.Store
		q     *cmdqueue.Queue
	)

	BeforeEach(func() {
		var err error
		store, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		q = cmdqueue.New(store)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("upsert-by-(kind,objID) semantics", func() {
		It("overwrites an earlier AddDirectForce for the same object before draining", func() {
			Expect(q.AddDirectForce(aztype.CmdForceData{ObjID: "1", Force: aztype.Vec3{1, 0, 0}})).To(Succeed())
			Expect(q.AddDirectForce(aztype.CmdForceData{ObjID: "1", Force: aztype.Vec3{2, 0, 0}})).To(Succeed())

			drained, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(drained.DirectForce).To(HaveLen(1))
			Expect(drained.DirectForce[0].Force).To(Equal(aztype.Vec3{2, 0, 0}))
		})

		It("keeps independent objects' commands separate", func() {
			Expect(q.AddDirectForce(aztype.CmdForceData{ObjID: "1"})).To(Succeed())
			Expect(q.AddDirectForce(aztype.CmdForceData{ObjID: "2"})).To(Succeed())

			drained, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(drained.DirectForce).To(HaveLen(2))
		})

		It("keeps different command kinds for the same object independent", func() {
			Expect(q.AddSpawn(aztype.CmdSpawnData{ObjID: "1"})).To(Succeed())
			Expect(q.AddModify(aztype.CmdModifyData{ObjID: "1"})).To(Succeed())

			drained, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(drained.Spawn).To(HaveLen(1))
			Expect(drained.Modify).To(HaveLen(1))
		})
	})

	Describe("DequeueCommands", func() {
		It("partitions drained commands by kind", func() {
			Expect(q.AddSpawn(aztype.CmdSpawnData{ObjID: "1"})).To(Succeed())
			Expect(q.AddRemove("2")).To(Succeed())
			Expect(q.AddModify(aztype.CmdModifyData{ObjID: "3"})).To(Succeed())
			Expect(q.AddDirectForce(aztype.CmdForceData{ObjID: "4"})).To(Succeed())
			Expect(q.AddBoosterForce(aztype.CmdForceData{ObjID: "5"})).To(Succeed())

			drained, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(drained.Spawn).To(HaveLen(1))
			Expect(drained.Remove).To(HaveLen(1))
			Expect(drained.Modify).To(HaveLen(1))
			Expect(drained.DirectForce).To(HaveLen(1))
			Expect(drained.BoosterForce).To(HaveLen(1))
		})

		It("atomically empties the queue: a second call back-to-back is empty", func() {
			Expect(q.AddSpawn(aztype.CmdSpawnData{ObjID: "1"})).To(Succeed())

			first, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Empty()).To(BeFalse())

			second, err := q.DequeueCommands()
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Empty()).To(BeTrue())
		})
	})
})
