package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"portfolio-backend/internal/models"
)

type scriptedChatter struct {
	results []models.ChatResult
	seen    []models.ChatRequest
}

func (s *scriptedChatter) Chat(ctx context.Context, req models.ChatRequest) models.ChatResult {
	s.seen = append(s.seen, req)
	r := s.results[0]
	s.results = s.results[1:]
	return r
}

var _ = Describe("Chat Command", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		color.NoColor = true
		out = &bytes.Buffer{}
	})

	newCmd := func(input string) *cobra.Command {
		cmd := &cobra.Command{}
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetContext(context.Background())
		return cmd
	}

	It("keeps successful turns as history", func() {
		svc := &scriptedChatter{results: []models.ChatResult{
			models.SuccessResult("Hi there!"),
			models.SuccessResult("Spring Boot and Angular."),
		}}

		Expect(converse(newCmd("Hello\nWhat stack?\nexit\n"), svc, "test-model")).To(Succeed())

		Expect(svc.seen).To(HaveLen(2))
		Expect(svc.seen[0].History).To(BeEmpty())
		Expect(svc.seen[1].Message).To(Equal("What stack?"))
		Expect(svc.seen[1].History).To(Equal([]models.Turn{
			{Role: models.RoleUser, Content: "Hello"},
			{Role: models.RoleAssistant, Content: "Hi there!"},
		}))
		Expect(out.String()).To(ContainSubstring("Assistant: Spring Boot and Angular."))
	})

	It("prints failures and leaves them out of history", func() {
		svc := &scriptedChatter{results: []models.ChatResult{
			models.FailureResult("I'm having trouble connecting right now. Please try again in a moment!"),
			models.SuccessResult("ok"),
		}}

		Expect(converse(newCmd("first\n\nsecond\n"), svc, "test-model")).To(Succeed())

		Expect(svc.seen).To(HaveLen(2))
		Expect(svc.seen[1].History).To(BeEmpty())
		Expect(out.String()).To(ContainSubstring("I'm having trouble connecting right now."))
	})

	It("talks to the provider configured by flags", func() {
		var got map[string]interface{}
		var apiKey string
		provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey = r.Header.Get("x-api-key")
			json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"content":[{"type":"text","text":"Hello from the provider"}]}`))
		}))
		DeferCleanup(provider.Close)

		prev, had := os.LookupEnv("ANTHROPIC_API_KEY")
		os.Setenv("ANTHROPIC_API_KEY", "test-key")
		DeferCleanup(func() {
			if had {
				os.Setenv("ANTHROPIC_API_KEY", prev)
			} else {
				os.Unsetenv("ANTHROPIC_API_KEY")
			}
		})

		cmd := NewChatCmd()
		cmd.SetIn(strings.NewReader("Hi\n"))
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--api-url", provider.URL, "--model", "test-model", "--max-tokens", "64"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Assistant: Hello from the provider"))
		Expect(apiKey).To(Equal("test-key"))
		Expect(got["model"]).To(Equal("test-model"))
		Expect(got["max_tokens"]).To(BeNumerically("==", 64))
	})

	It("fails fast without a model", func() {
		os.Setenv("ANTHROPIC_API_KEY", "test-key")
		DeferCleanup(os.Unsetenv, "ANTHROPIC_API_KEY")
		os.Unsetenv("ANTHROPIC_MODEL")

		cmd := NewChatCmd()
		cmd.SetOut(out)
		cmd.SetArgs([]string{"--api-url", "http://127.0.0.1:1"})

		Expect(cmd.Execute()).To(MatchError(ContainSubstring("chat model must be provided")))
	})
})
