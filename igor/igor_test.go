package igor_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/aztype"
	"github.com/azraelhq/azrael/igor"
	"github.com/azraelhq/azrael/kvs"
)

var _ = Describe("Registry", func() {
	var (
		store *kvs.Store
		reg   *igor.Registry
	)

	BeforeEach(func() {
		var err error
		store, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
		reg, err = igor.New(store)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	hinge := func(rbA, rbB string) aztype.Constraint {
		c, err := aztype.NewP2PConstraint("hinge", rbA, rbB, aztype.ConP2PData{})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	Describe("AddConstraints", func() {
		It("inserts new constraints and counts only the newly inserted ones", func() {
			n, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("treats (A,B) and (B,A) as the same constraint identity", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())

			n, err := reg.AddConstraints([]aztype.Constraint{hinge("b", "a")})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0), "re-adding the same constraint with bodies swapped must not insert again")
		})
	})

	Describe("RemoveConstraints", func() {
		It("removes a previously added constraint and counts it", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())

			n, err := reg.RemoveConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))

			Expect(reg.GetConstraints(nil)).To(BeEmpty())
		})

		It("is a no-op removing a constraint that was never added", func() {
			n, err := reg.RemoveConstraints([]aztype.Constraint{hinge("x", "y")})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})
	})

	Describe("GetConstraints", func() {
		It("returns every constraint when bodyIDs is nil", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b"), hinge("c", "d")})
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.GetConstraints(nil)).To(HaveLen(2))
		})

		It("returns only constraints featuring the given body IDs", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b"), hinge("c", "d")})
			Expect(err).NotTo(HaveOccurred())

			got := reg.GetConstraints([]string{"a"})
			Expect(got).To(HaveLen(1))
			Expect(got[0].Bodies()).To(ContainElement("a"))
		})

		It("equals the set-union of pre-existing and newly added constraints", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())
			pre := reg.GetConstraints(nil)

			_, err = reg.AddConstraints([]aztype.Constraint{hinge("c", "d")})
			Expect(err).NotTo(HaveOccurred())
			post := reg.GetConstraints(nil)

			Expect(post).To(HaveLen(len(pre) + 1))
		})
	})

	Describe("UniquePairs", func() {
		It("returns each body pair once regardless of constraint order", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b"), hinge("b", "a")})
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.UniquePairs()).To(HaveLen(1))
		})

		It("skips world-anchored constraints (empty rb_b)", func() {
			anchored, err := aztype.NewP2PConstraint("anchor", "a", "", aztype.ConP2PData{})
			Expect(err).NotTo(HaveOccurred())
			_, err = reg.AddConstraints([]aztype.Constraint{anchored})
			Expect(err).NotTo(HaveOccurred())
			Expect(reg.UniquePairs()).To(BeEmpty())
		})
	})

	Describe("UpdateLocalCache", func() {
		It("reloads the cache from the store and returns its size", func() {
			_, err := reg.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())

			n, err := reg.UpdateLocalCache()
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("loads constraints another registry wrote to the same store", func() {
			second, err := kvs.Open(":memory:")
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()

			r2, err := igor.New(second)
			Expect(err).NotTo(HaveOccurred())
			_, err = r2.AddConstraints([]aztype.Constraint{hinge("a", "b")})
			Expect(err).NotTo(HaveOccurred())

			r3, err := igor.New(second)
			Expect(err).NotTo(HaveOccurred())
			Expect(r3.GetConstraints(nil)).To(HaveLen(1))
		})
	})
})
