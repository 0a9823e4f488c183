package admintokencmder

import (
	"bytes"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"portfolio-backend/internal/middleware"
)

var _ = Describe("Admin Token Command", func() {
	var stdout, stderr *bytes.Buffer

	BeforeEach(func() {
		color.NoColor = true
		stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}

		prev, had := os.LookupEnv("ADMIN_JWT_SECRET")
		os.Unsetenv("ADMIN_JWT_SECRET")
		DeferCleanup(func() {
			if had {
				os.Setenv("ADMIN_JWT_SECRET", prev)
			}
		})
	})

	execute := func(args ...string) error {
		cmd := NewAdminTokenCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{}, args...))
		return cmd.Execute()
	}

	It("prints a token signed for the admin subject", func() {
		Expect(execute("--secret", "s3cret", "--ttl", "1h")).To(Succeed())

		raw := strings.TrimSpace(stdout.String())
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("s3cret"), nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.Subject).To(Equal(middleware.AdminSubject))
		Expect(claims.ExpiresAt).NotTo(BeNil())
		Expect(stderr.String()).To(ContainSubstring("expires"))
	})

	It("reads the secret from the environment", func() {
		os.Setenv("ADMIN_JWT_SECRET", "from-env")
		Expect(execute()).To(Succeed())
		Expect(stdout.String()).NotTo(BeEmpty())
	})

	It("fails without a secret", func() {
		err := execute()
		Expect(err).To(MatchError(ContainSubstring("no signing secret")))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("rejects a non-positive ttl", func() {
		Expect(execute("--secret", "s3cret", "--ttl", "0s")).To(MatchError(ContainSubstring("ttl must be positive")))
	})
})
