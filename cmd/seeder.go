package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/core/common/validation"
	"github.com/tarefa360/tarefa360/internal/notify"
	"github.com/tarefa360/tarefa360/internal/period"
	periodRepository "github.com/tarefa360/tarefa360/internal/period/postgres"
	"github.com/tarefa360/tarefa360/internal/user"
	userRepository "github.com/tarefa360/tarefa360/internal/user/postgres"
)

// seedOptions describes the first administrator.
type seedOptions struct {
	Clear      bool
	BCryptCost int
	Admin      user.AccountInput
}

var (
	clearData bool
	seedAdmin = user.AccountInput{Role: string(user.RoleAdmin)}
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a first administrator and an active period",
	Long: `Seed the database for development and first deployments. The administrator gets the
default password (first four CPF digits followed by the nome de guerra) and must change it
on first login.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := setupLogger(cfg)

		store, err := openStore(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer store.Close()

		report, err := seedDatabase(context.Background(), store, seedOptions{
			Clear:      clearData,
			BCryptCost: cfg.Security.BCryptCost,
			Admin:      seedAdmin,
		}, lg)
		for _, line := range report {
			fmt.Println(line)
		}
		if err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

// seedDatabase creates the administrator and an active period for the current year unless they
// exist. It returns what it did, one line per step.
func seedDatabase(ctx context.Context, store *Store, opts seedOptions, lg *slog.Logger) ([]string, error) {
	var report []string

	if opts.Clear {
		for _, table := range []string{"associations", "activities", "evaluation_periods", "users"} {
			if err := store.Gorm.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
				return report, fmt.Errorf("clear %s: %w", table, err)
			}
		}
		report = append(report, "Cleared existing data")
	}

	users := user.NewService(userRepository.NewUserRepository(store.Gorm), nil, notify.Nop{}, nil,
		user.Options{BCryptCost: opts.BCryptCost}, lg)

	admin := opts.Admin
	admin.Role = string(user.RoleAdmin)
	switch _, err := users.FindByCPF(ctx, admin.CPF); {
	case err == nil:
		report = append(report, "admin user already exists: "+admin.CPF)
	case internal.HasCode(err, internal.ErrCodeUserNotFound):
		created, err := users.CreateAccount(ctx, admin)
		if err != nil {
			return report, fmt.Errorf("seed admin user: %w", err)
		}
		report = append(report, "Seeded admin user: "+created.CPF)
	default:
		return report, fmt.Errorf("look up admin user: %w", err)
	}

	periods := period.NewService(periodRepository.NewPeriodRepository(store.Gorm), notify.Nop{}, nil, lg)
	if active, err := periods.GetActivePeriod(ctx); err == nil && active != nil {
		return append(report, "active period already exists: "+active.Name), nil
	}

	year := time.Now().Year()
	p, err := periods.CreatePeriod(ctx, period.PeriodRequest{
		Name:      fmt.Sprintf("Avaliação %d", year),
		StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format(validation.DateLayout),
		EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).Format(validation.DateLayout),
		Activate:  true,
	})
	if err != nil {
		return report, fmt.Errorf("seed evaluation period: %w", err)
	}
	return append(report, "Seeded active evaluation period: "+p.Name), nil
}

func init() {
	f := seedCmd.Flags()
	f.BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	f.StringVar(&seedAdmin.CPF, "admin-cpf", "52998224725", "CPF of the seeded administrator")
	f.StringVar(&seedAdmin.Name, "admin-name", "Administrador do Sistema", "full name of the seeded administrator")
	f.StringVar(&seedAdmin.NomeDeGuerra, "admin-nome-de-guerra", "admin", "nome de guerra of the seeded administrator")
	f.StringVar(&seedAdmin.PostoGrad, "admin-posto-grad", "Cap", "posto/graduação of the seeded administrator")
	f.StringVar(&seedAdmin.Email, "admin-email", "admin@tarefa360.local", "e-mail of the seeded administrator")
	f.StringVar(&seedAdmin.Sector, "admin-sector", "Administração", "sector of the seeded administrator")
	f.StringVar(&seedAdmin.JobTitle, "admin-job-title", "Administrador", "job title of the seeded administrator")
}
