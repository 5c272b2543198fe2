package easypay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/miguelfer1410/cdp-sub001/easypay"

	"github.com/miguelfer1410/cdp-sub001/shared"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

var _ = Describe("DefaultClient", func() {

	var (
		ctx = context.Background()

		server *httptest.Server
		client *DefaultClient
	)

	newClient := func(handler http.HandlerFunc) *DefaultClient {
		server = httptest.NewServer(handler)
		return &DefaultClient{
			Config: &shared.AppConfig{
				EasypayBaseUrl:   server.URL,
				EasypayAccountId: "acc-1",
				EasypayApiKey:    "key-1",
				EasypayTimeout:   2,
			},
			Logger: shared.NewLogger("test"),
		}
	}

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
	})

	Context("IssueMbReference", func() {

		It("posts a single mb payment and returns the reference triplet", func() {
			var received map[string]interface{}
			var accountId, apiKey string

			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				accountId = r.Header.Get("AccountId")
				apiKey = r.Header.Get("ApiKey")
				Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"ext-1","method":{"entity":"11200","reference":"123456789","status":"pending"}}`))
			})

			result, err := client.IssueMbReference(ctx, ReferenceRequest{
				Amount:        5.0,
				Key:           "key-1",
				CustomerName:  "João Silva",
				CustomerEmail: "joao@cdp.pt",
				CustomerPhone: "912345678",
			})

			Expect(err).To(BeNil())
			Expect(result.Id).To(Equal("ext-1"))
			Expect(result.Entity).To(Equal("11200"))
			Expect(result.Reference).To(Equal("123456789"))
			Expect(result.Amount).To(Equal(5.0))

			Expect(accountId).To(Equal("acc-1"))
			Expect(apiKey).To(Equal("key-1"))
			Expect(received["type"]).To(Equal("sale"))
			Expect(received["method"]).To(Equal("mb"))
			Expect(received["value"]).To(Equal(5.0))
			capture := received["capture"].(map[string]interface{})
			Expect(capture["descriptive"]).To(Equal("Quota Mensal CDP"))
			customer := received["customer"].(map[string]interface{})
			Expect(customer["name"]).To(Equal("João Silva"))
			Expect(customer["phone"]).To(Equal("912345678"))
			Expect(customer["phone_indicative"]).To(Equal("+351"))
		})

		It("falls back to a placeholder phone when the member has none", func() {
			var received map[string]interface{}

			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
				w.Write([]byte(`{"id":"ext-1","method":{"entity":"11200","reference":"123456789"}}`))
			})

			_, err := client.IssueMbReference(ctx, ReferenceRequest{Amount: 5.0, Key: "k", CustomerEmail: "joao@cdp.pt"})

			Expect(err).To(BeNil())
			customer := received["customer"].(map[string]interface{})
			Expect(customer["phone"]).To(Equal("910000000"))
		})

		It("rejects a payload without a reference", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"ext-1","method":{}}`))
			})

			_, err := client.IssueMbReference(ctx, ReferenceRequest{Amount: 5.0, Key: "k"})

			Expect(errors.Cause(err)).To(Equal(ErrInvalidResponse))
		})

		It("rejects a payload that is not json", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>maintenance</html>`))
			})

			_, err := client.IssueMbReference(ctx, ReferenceRequest{Amount: 5.0, Key: "k"})

			Expect(errors.Cause(err)).To(Equal(ErrInvalidResponse))
		})

		It("surfaces a gateway error on a non 2xx status", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"message":"invalid account"}`))
			})

			_, err := client.IssueMbReference(ctx, ReferenceRequest{Amount: 5.0, Key: "k"})

			Expect(errors.Cause(err)).To(Equal(ErrGatewayError))
			Expect(err.Error()).To(ContainSubstring("422"))
		})

		It("surfaces unavailability when the gateway is unreachable", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {})
			server.Close()

			_, err := client.IssueMbReference(ctx, ReferenceRequest{Amount: 5.0, Key: "k"})

			Expect(errors.Cause(err)).To(Equal(ErrGatewayUnavailable))
		})
	})

	Context("GetPaymentStatus", func() {

		It("queries the payment by its external id", func() {
			var path string

			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				path = r.URL.Path
				w.Write([]byte(`{"id":"ext-1","method":{"status":"success"}}`))
			})

			result, err := client.GetPaymentStatus(ctx, "ext-1")

			Expect(err).To(BeNil())
			Expect(path).To(Equal("/ext-1"))
			Expect(result.Id).To(Equal("ext-1"))
			Expect(result.Status).To(Equal("success"))
		})

		It("rejects a payload without a status", func() {
			client = newClient(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"id":"ext-1","method":{}}`))
			})

			_, err := client.GetPaymentStatus(ctx, "ext-1")

			Expect(errors.Cause(err)).To(Equal(ErrInvalidResponse))
		})
	})
})
