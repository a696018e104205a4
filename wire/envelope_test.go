package wire_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/azraelhq/azrael/wire"
)

var _ = Describe("Envelope", func() {
	Describe("DecodeRequest", func() {
		It("decodes a well-formed request", func() {
			req, err := wire.DecodeRequest([]byte(`{"cmd":"ping","data":{}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Cmd).To(Equal("ping"))
		})

		It("returns an error for malformed JSON", func() {
			_, err := wire.DecodeRequest([]byte(`{not json`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DecodeInto", func() {
		type payload struct {
			Foo string `json:"foo"`
		}

		It("treats an empty payload as all-fields-unset, not an error", func() {
			var p payload
			err := wire.DecodeInto(nil, &p)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Foo).To(BeEmpty())
		})

		It("unmarshals a non-empty payload", func() {
			var p payload
			err := wire.DecodeInto([]byte(`{"foo":"bar"}`), &p)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Foo).To(Equal("bar"))
		})
	})

	Describe("OK/Err and Encode", func() {
		It("encodes an OK reply with data", func() {
			reply := wire.OK(map[string]string{"pong": "clerk"})
			b, err := reply.Encode()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(ContainSubstring(`"ok":true`))
			Expect(string(b)).To(ContainSubstring(`"pong":"clerk"`))
		})

		It("encodes an Err reply with a formatted message and no data", func() {
			reply := wire.Err("bad %s", "input")
			Expect(reply.OK).To(BeFalse())
			Expect(reply.Msg).To(Equal("bad input"))
			b, err := reply.Encode()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(ContainSubstring(`"ok":false`))
			Expect(string(b)).NotTo(ContainSubstring(`"data"`))
		})
	})
})
