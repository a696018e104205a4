package kvs_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/kvs"
)

var _ = Describe("Store", func() {
	var store *kvs.Store

	BeforeEach(func() {
		var err error
		store, err = kvs.Open(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Get/Set/Delete", func() {
		It("reports found=false for an absent key", func() {
			_, found, err := store.Get("missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("round-trips a value through Set/Get", func() {
			Expect(store.Set("k", "v")).To(Succeed())
			v, found, err := store.Get("k")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(v).To(Equal("v"))
		})

		It("does not error deleting an absent key", func() {
			Expect(store.Delete("nope")).To(Succeed())
		})
	})

	Describe("SetIfAbsent", func() {
		It("inserts when the key is absent", func() {
			inserted, err := store.SetIfAbsent("k", "v1")
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())
		})

		It("refuses to overwrite an existing key", func() {
			_, err := store.SetIfAbsent("k", "v1")
			Expect(err).NotTo(HaveOccurred())

			inserted, err := store.SetIfAbsent("k", "v2")
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			v, _, _ := store.Get("k")
			Expect(v).To(Equal("v1"))
		})
	})

	Describe("UpdateIfExists", func() {
		It("never creates a key that does not already exist", func() {
			updated, err := store.UpdateIfExists("missing", func(old string) (string, error) {
				return "new", nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeFalse())

			_, found, _ := store.Get("missing")
			Expect(found).To(BeFalse())
		})

		It("mutates an existing value in place", func() {
			Expect(store.Set("k", "1")).To(Succeed())
			updated, err := store.UpdateIfExists("k", func(old string) (string, error) {
				return old + "!", nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(BeTrue())

			v, _, _ := store.Get("k")
			Expect(v).To(Equal("1!"))
		})

		It("propagates the mutate function's error without writing", func() {
			Expect(store.Set("k", "1")).To(Succeed())
			boom := errors.New("boom")
			_, err := store.UpdateIfExists("k", func(old string) (string, error) {
				return "", boom
			})
			Expect(err).To(MatchError(boom))

			v, _, _ := store.Get("k")
			Expect(v).To(Equal("1"))
		})
	})

	Describe("AscendPrefix", func() {
		It("visits only keys under the prefix, and can stop early", func() {
			Expect(store.Set("p:1", "a")).To(Succeed())
			Expect(store.Set("p:2", "b")).To(Succeed())
			Expect(store.Set("q:1", "c")).To(Succeed())

			var seen []string
			err := store.AscendPrefix("p:", func(key, val string) bool {
				seen = append(seen, key)
				return true
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(ConsistOf("p:1", "p:2"))

			var first []string
			err = store.AscendPrefix("p:", func(key, val string) bool {
				first = append(first, key)
				return false
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal([]string{"p:1"}))
		})
	})

	Describe("DeletePrefixCollecting", func() {
		It("atomically collects and removes every key under the prefix", func() {
			Expect(store.Set("c:1", "a")).To(Succeed())
			Expect(store.Set("c:2", "b")).To(Succeed())
			Expect(store.Set("d:1", "c")).To(Succeed())

			var collected []string
			n, err := store.DeletePrefixCollecting("c:", func(key, val string) {
				collected = append(collected, key)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
			Expect(collected).To(ConsistOf("c:1", "c:2"))

			_, found, _ := store.Get("c:1")
			Expect(found).To(BeFalse())
			_, found, _ = store.Get("d:1")
			Expect(found).To(BeTrue())
		})

		It("returns 0 when nothing matches the prefix", func() {
			n, err := store.DeletePrefixCollecting("nope:", func(string, string) {})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(0))
		})
	})
})
