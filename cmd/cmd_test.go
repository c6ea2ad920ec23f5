package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/identity"
	"github.com/tarefa360/tarefa360/internal/notify"
	"github.com/tarefa360/tarefa360/internal/user"
	userRepository "github.com/tarefa360/tarefa360/internal/user/postgres"
	"github.com/tarefa360/tarefa360/pkg/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(dir string) {
	content := fmt.Sprintf(`
database:
  driver: sqlite
  source: %s
security:
  jwt_secret: %s
  bcrypt_cost: 4
storage:
  avatar_dir: %s
observability:
  logging:
    level: error
`, filepath.Join(dir, "tarefa360.db"), testSecret, filepath.Join(dir, "avatars"))
	Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o600)).To(Succeed())
}

var _ = Describe("loadConfig", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("fills keys the file leaves out from the defaults", func() {
		writeConfig(dir)

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Driver).To(Equal("sqlite"))
		Expect(cfg.Security.BCryptCost).To(Equal(4))
		Expect(cfg.Server.Port).To(Equal(8080))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(12 * time.Hour))
		Expect(cfg.Security.FallbackAdmin.NomeDeGuerra).To(Equal("admin"))
		Expect(cfg.Storage.AvatarSize).To(Equal(256))
	})

	It("lets ENV_ prefixed variables override the file", func() {
		writeConfig(dir)
		Expect(os.Setenv("ENV_HTTP_SERVER_PORT", "9091")).To(Succeed())
		DeferCleanup(os.Unsetenv, "ENV_HTTP_SERVER_PORT")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9091))
	})

	It("rejects a config without a signing secret or store", func() {
		_, err := loadConfig(dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid config"))
	})
})

var _ = Describe("HTTP server wiring", func() {
	var (
		deps   *Dependencies
		server *httptest.Server
	)

	BeforeEach(func() {
		dir := GinkgoT().TempDir()
		writeConfig(dir)

		previous := configPath
		configPath = dir
		DeferCleanup(func() { configPath = previous })

		var err error
		deps, err = initializeDependencies()
		Expect(err).NotTo(HaveOccurred())
		Expect(setupRoutes(context.Background(), deps)).To(Succeed())

		server = httptest.NewServer(deps.Router)
		DeferCleanup(func() {
			server.Close()
			deps.Bus.Wait()
			_ = deps.Store.Close()
		})

		users := user.NewService(userRepository.NewUserRepository(deps.Store.Gorm), nil, notify.Nop{}, nil,
			user.Options{BCryptCost: 4}, logger.LoggerWrapper())
		_, err = users.CreateAccount(context.Background(), user.AccountInput{
			CPF:          "52998224725",
			Name:         "Maria Souza",
			NomeDeGuerra: "souza",
			PostoGrad:    "Cap",
			Email:        "souza@example.com",
			Sector:       "Seção de Pessoal",
			JobTitle:     "Chefe",
			Role:         string(user.RoleAdmin),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	call := func(method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
		var payload bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&payload).Encode(body)).To(Succeed())
		}
		req, err := http.NewRequest(method, server.URL+path, &payload)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		out := map[string]interface{}{}
		_ = json.NewDecoder(resp.Body).Decode(&out)
		return resp, out
	}

	login := func() string {
		resp, body := call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"cpf":      "529.982.247-25",
			"password": "5299souza",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		return body["access_token"].(string)
	}

	It("reports the store as healthy", func() {
		resp, body := call(http.MethodGet, "/api/v1/health", "", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["status"]).To(Equal("healthy"))
	})

	It("logs in with the derived default password and asks for a new one", func() {
		resp, body := call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"cpf":      "52998224725",
			"password": "5299souza",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body["access_token"]).NotTo(BeEmpty())
		Expect(body["force_password_change"]).To(BeTrue())
		Expect(body["redirect"]).To(Equal("/admin/dashboard"))
	})

	It("rejects a wrong password", func() {
		resp, body := call(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"cpf":      "52998224725",
			"password": "nope",
		})
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(body["error"]).To(Equal("INVALID_CREDENTIALS"))
	})

	It("creates and activates an evaluation period end to end", func() {
		token := login()

		resp, created := call(http.MethodPost, "/api/v1/periods", token, map[string]interface{}{
			"name":       "Avaliação 2025",
			"start_date": "2025-01-01",
			"end_date":   "2025-12-31",
			"activate":   true,
		})
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))
		Expect(created["status"]).To(Equal("Active"))

		resp, active := call(http.MethodGet, "/api/v1/periods/active", token, nil)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(active["name"]).To(Equal("Avaliação 2025"))
	})

	It("rejects a tampered token", func() {
		resp, _ := call(http.MethodGet, "/api/v1/users", "not-a-token", nil)
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
	})
})

var _ = Describe("seed", func() {
	var store *Store

	BeforeEach(func() {
		var err error
		store, err = openStore(internal.DatabaseConfig{
			Driver: "sqlite",
			Source: filepath.Join(GinkgoT().TempDir(), "seed.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)
	})

	It("accepts the flag defaults for the administrator account", func() {
		_, err := user.ValidateAccount(user.ModeCreate, seedAdmin)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates the administrator and an active period on an empty database", func() {
		report, err := seedDatabase(context.Background(), store, seedOptions{BCryptCost: 4, Admin: seedAdmin}, logger.LoggerWrapper())
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(ContainElement("Seeded admin user: 52998224725"))

		users := user.NewService(userRepository.NewUserRepository(store.Gorm), nil, notify.Nop{}, nil,
			user.Options{BCryptCost: 4}, logger.LoggerWrapper())
		admin, err := users.FindByCPF(context.Background(), "52998224725")
		Expect(err).NotTo(HaveOccurred())
		Expect(admin.Role).To(Equal(user.RoleAdmin))
		Expect(admin.JobTitle).To(Equal("Administrador"))
		Expect(identity.ComparePassword(admin.PasswordHash, "5299admin")).To(BeTrue())

		var active int64
		Expect(store.Gorm.Table("evaluation_periods").Where("status = ?", "Active").Count(&active).Error).To(Succeed())
		Expect(active).To(Equal(int64(1)))
	})

	It("leaves existing data alone on a second run", func() {
		opts := seedOptions{BCryptCost: 4, Admin: seedAdmin}
		_, err := seedDatabase(context.Background(), store, opts, logger.LoggerWrapper())
		Expect(err).NotTo(HaveOccurred())

		report, err := seedDatabase(context.Background(), store, opts, logger.LoggerWrapper())
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(ConsistOf("admin user already exists: 52998224725", HavePrefix("active period already exists")))

		var periods int64
		Expect(store.Gorm.Table("evaluation_periods").Count(&periods).Error).To(Succeed())
		Expect(periods).To(Equal(int64(1)))
	})

	It("reports an incomplete administrator instead of seeding it", func() {
		admin := seedAdmin
		admin.Email = ""
		_, err := seedDatabase(context.Background(), store, seedOptions{BCryptCost: 4, Admin: admin}, logger.LoggerWrapper())
		Expect(err).To(MatchError(ContainSubstring("email is required")))
	})
})
