package services_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

const testPrompt = "You are a helpful portfolio assistant.\nAlways answer in first person.\n"

type capturedRequest struct {
	header http.Header
	body   []byte
}

func newProvider(status int, body string, captured chan<- capturedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if captured != nil {
			captured <- capturedRequest{header: r.Header.Clone(), body: b}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
}

func newChatService(url string, timeout time.Duration, m *metrics.Metrics) *services.ChatService {
	client, err := services.NewAnthropicClient(services.AnthropicConfig{
		APIURL:  url,
		APIKey:  "sk-test-secret",
		Timeout: timeout,
	})
	Expect(err).NotTo(HaveOccurred())

	svc, err := services.NewChatService(services.ChatConfig{
		Model:        "claude-test",
		MaxTokens:    512,
		SystemPrompt: testPrompt,
	}, client, m, zap.NewNop())
	Expect(err).NotTo(HaveOccurred())
	return svc
}

var _ = Describe("ChatService", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.New()
	})

	Describe("building the provider request", func() {
		var svc *services.ChatService

		BeforeEach(func() {
			svc = newChatService("http://127.0.0.1:1", time.Second, m)
		})

		It("sends a single user turn when there is no history", func() {
			req := svc.BuildRequest(models.ChatRequest{Message: "What tech stack do you use?"})

			Expect(req.Messages).To(Equal([]models.Turn{
				{Role: "user", Content: "What tech stack do you use?"},
			}))
			Expect(req.Model).To(Equal("claude-test"))
			Expect(req.MaxTokens).To(Equal(512))
			Expect(req.System).To(Equal(testPrompt))
		})

		It("treats an empty history like no history", func() {
			req := svc.BuildRequest(models.ChatRequest{Message: "hi", History: []models.Turn{}})
			Expect(req.Messages).To(HaveLen(1))
		})

		It("keeps history order and appends the current message last", func() {
			history := []models.Turn{
				{Role: "user", Content: "Hi"},
				{Role: "assistant", Content: "Hello! I'm Alex."},
				{Role: "user", Content: "Where do you work?"},
				{Role: "assistant", Content: "At TechNova."},
			}
			req := svc.BuildRequest(models.ChatRequest{Message: "Since when?", History: history})

			Expect(req.Messages).To(HaveLen(len(history) + 1))
			Expect(req.Messages[:len(history)]).To(Equal(history))
			Expect(req.Messages[len(history)]).To(Equal(models.Turn{Role: "user", Content: "Since when?"}))
		})

		It("passes unknown history roles through untouched", func() {
			req := svc.BuildRequest(models.ChatRequest{
				Message: "ok",
				History: []models.Turn{{Role: "narrator", Content: "once upon a time"}},
			})
			Expect(req.Messages[0].Role).To(Equal("narrator"))
		})

		It("does not alias the caller's history slice", func() {
			history := []models.Turn{{Role: "user", Content: "a"}}
			req := svc.BuildRequest(models.ChatRequest{Message: "b", History: history})
			req.Messages[0].Content = "changed"
			Expect(history[0].Content).To(Equal("a"))
		})

		It("is byte-identical across calls with the same input", func() {
			in := models.ChatRequest{
				Message: "Tell me about ShopStream",
				History: []models.Turn{{Role: "user", Content: "Hi"}, {Role: "assistant", Content: "Hey"}},
			}
			first, err := json.Marshal(svc.BuildRequest(in))
			Expect(err).NotTo(HaveOccurred())
			second, err := json.Marshal(svc.BuildRequest(in))
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("serializes exactly model, max_tokens, system and messages", func() {
			b, err := json.Marshal(svc.BuildRequest(models.ChatRequest{Message: "hi"}))
			Expect(err).NotTo(HaveOccurred())

			var fields map[string]json.RawMessage
			Expect(json.Unmarshal(b, &fields)).To(Succeed())
			Expect(fields).To(HaveLen(4))
			Expect(fields).To(HaveKey("model"))
			Expect(fields).To(HaveKey("max_tokens"))
			Expect(fields).To(HaveKey("system"))
			Expect(fields).To(HaveKey("messages"))
		})
	})

	Describe("calling the provider", func() {
		It("posts the request with the provider headers and returns the reply", func() {
			captured := make(chan capturedRequest, 1)
			srv := newProvider(http.StatusOK, `{"content":[{"type":"text","text":"I mainly work with Java and Angular."}]}`, captured)
			defer srv.Close()

			svc := newChatService(srv.URL, time.Second, m)
			result := svc.Chat(context.Background(), models.ChatRequest{Message: "What tech stack do you use?"})

			Expect(result).To(Equal(models.ChatResult{
				Message: "I mainly work with Java and Angular.",
				Role:    "assistant",
				Success: true,
			}))

			var got capturedRequest
			Eventually(captured).Should(Receive(&got))
			Expect(got.header.Get("Content-Type")).To(Equal("application/json"))
			Expect(got.header.Get("x-api-key")).To(Equal("sk-test-secret"))
			Expect(got.header.Get("anthropic-version")).To(Equal("2023-06-01"))

			var sent services.ProviderRequest
			Expect(json.Unmarshal(got.body, &sent)).To(Succeed())
			Expect(sent.Messages).To(Equal([]models.Turn{{Role: "user", Content: "What tech stack do you use?"}}))
			Expect(sent.System).To(Equal(testPrompt))

			Expect(testutil.ToFloat64(m.ChatRequests.WithLabelValues(metrics.OutcomeSuccess))).To(Equal(float64(1)))
		})

		It("returns the hello reply for the minimal success body", func() {
			srv := newProvider(http.StatusOK, `{"content":[{"text":"hello"}]}`, nil)
			defer srv.Close()

			result := newChatService(srv.URL, time.Second, m).Chat(context.Background(), models.ChatRequest{Message: "hi"})
			Expect(result).To(Equal(models.SuccessResult("hello")))
		})

		DescribeTable("falls back to a displayable reply when the shape is unexpected",
			func(body string) {
				srv := newProvider(http.StatusOK, body, nil)
				defer srv.Close()

				result := newChatService(srv.URL, time.Second, m).Chat(context.Background(), models.ChatRequest{Message: "hi"})

				Expect(result.Success).To(BeTrue())
				Expect(result.Role).To(Equal("assistant"))
				Expect(result.Message).To(Equal(services.FallbackReply))
				Expect(result.Error).To(BeEmpty())
				Expect(testutil.ToFloat64(m.ChatRequests.WithLabelValues(metrics.OutcomeFallback))).To(Equal(float64(1)))
			},
			Entry("empty content", `{"content":[]}`),
			Entry("no content field", `{}`),
			Entry("null content", `{"content":null}`),
			Entry("first block without text", `{"content":[{"type":"tool_use","id":"x"}]}`),
			Entry("non-string text", `{"content":[{"text":42}]}`),
			Entry("content is not an array", `{"content":"hello"}`),
		)

		DescribeTable("fails with the fixed apology when the provider call fails",
			func(status int, body string) {
				srv := newProvider(status, body, nil)
				defer srv.Close()

				result := newChatService(srv.URL, time.Second, m).Chat(context.Background(), models.ChatRequest{Message: "hi"})

				Expect(result).To(Equal(models.FailureResult(services.ConnectionErrorMessage)))
				Expect(result.Error).NotTo(ContainSubstring("overloaded"))
				Expect(result.Error).NotTo(ContainSubstring("sk-test-secret"))
				Expect(testutil.ToFloat64(m.ChatRequests.WithLabelValues(metrics.OutcomeFailure))).To(Equal(float64(1)))
			},
			Entry("server error", http.StatusInternalServerError, `{"type":"error","error":{"type":"api_error"}}`),
			Entry("overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"overloaded"}}`),
			Entry("unauthorized", http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error"}}`),
			Entry("malformed body", http.StatusOK, `not json at all`),
			Entry("empty body", http.StatusOK, ``),
			Entry("array body", http.StatusOK, `[{"text":"hello"}]`),
		)

		It("fails with the fixed apology when the provider times out", func() {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer srv.Close()
			defer close(release)

			result := newChatService(srv.URL, 50*time.Millisecond, m).Chat(context.Background(), models.ChatRequest{Message: "hi"})

			Expect(result).To(Equal(models.ChatResult{
				Success: false,
				Error:   "I'm having trouble connecting right now. Please try again in a moment!",
			}))
		})

		It("fails with the fixed apology when the provider is unreachable", func() {
			srv := newProvider(http.StatusOK, `{}`, nil)
			url := srv.URL
			srv.Close()

			result := newChatService(url, time.Second, m).Chat(context.Background(), models.ChatRequest{Message: "hi"})

			Expect(result.Success).To(BeFalse())
			Expect(result.Error).To(Equal(services.ConnectionErrorMessage))
			Expect(result.Message).To(BeEmpty())
		})

		It("contains a panicking client", func() {
			svc, err := services.NewChatService(services.ChatConfig{Model: "m", MaxTokens: 1}, panicClient{}, m, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Chat(context.Background(), models.ChatRequest{Message: "hi"})).
				To(Equal(models.FailureResult(services.ConnectionErrorMessage)))
		})
	})

	Describe("construction", func() {
		It("rejects missing configuration", func() {
			_, err := services.NewChatService(services.ChatConfig{MaxTokens: 10}, panicClient{}, m, zap.NewNop())
			Expect(err).To(HaveOccurred())

			_, err = services.NewChatService(services.ChatConfig{Model: "m"}, panicClient{}, m, zap.NewNop())
			Expect(err).To(HaveOccurred())

			_, err = services.NewChatService(services.ChatConfig{Model: "m", MaxTokens: 10}, nil, m, zap.NewNop())
			Expect(err).To(HaveOccurred())

			_, err = services.NewAnthropicClient(services.AnthropicConfig{APIURL: "http://x"})
			Expect(err).To(HaveOccurred())

			_, err = services.NewAnthropicClient(services.AnthropicConfig{APIKey: "k"})
			Expect(err).To(HaveOccurred())
		})
	})
})

type panicClient struct{}

func (panicClient) Complete(context.Context, services.ProviderRequest) ([]byte, error) {
	panic("boom")
}
