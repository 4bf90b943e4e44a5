package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskplane/taskplane/internal/auth"
	"github.com/taskplane/taskplane/internal/logger"
	"github.com/taskplane/taskplane/internal/models"
	postgresstore "github.com/taskplane/taskplane/internal/store/postgres"
)

// SeedCmd creates a demo hierarchy (one root organization with one child)
// and prints access tokens for an OWNER in the root org plus an ADMIN and
// a VIEWER in the child org.
type SeedCmd struct {
	JWTSecret string        `help:"secret used to sign HS256 access tokens" env:"TASKPLANE_JWT_SECRET"`
	TokenTTL  time.Duration `help:"TTL for the printed tokens" default:"24h"`

	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	if len(c.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes (--jwt-secret or TASKPLANE_JWT_SECRET)")
	}
	if err := c.PostgresStore.validate(); err != nil {
		return err
	}

	pool, err := c.PostgresStore.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgresstore.Migrate(ctx, pool); err != nil {
		return err
	}

	orgs := postgresstore.NewOrganizationStore(pool)

	now := time.Now()
	rootID := uuid.Must(uuid.NewV7())
	childID := uuid.Must(uuid.NewV7())

	root := &models.Organization{
		OrgID:     rootID,
		Name:      "Acme",
		CreatedAt: now,
		UpdatedAt: now,
	}
	child := &models.Organization{
		OrgID:     childID,
		Name:      "Acme East",
		ParentID:  &rootID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, org := range []*models.Organization{root, child} {
		if err := orgs.Create(ctx, org); err != nil {
			return err
		}
		log.Info().Str("org_id", org.OrgID.String()).Str("name", org.Name).Msg("Created organization")
	}

	verifier := auth.NewVerifier([]byte(c.JWTSecret))

	principals := []models.Principal{
		{UserID: uuid.Must(uuid.NewV7()), Email: "owner@acme.test", Role: models.RoleOwner, OrgID: rootID},
		{UserID: uuid.Must(uuid.NewV7()), Email: "admin@acme-east.test", Role: models.RoleAdmin, OrgID: childID},
		{UserID: uuid.Must(uuid.NewV7()), Email: "viewer@acme-east.test", Role: models.RoleViewer, OrgID: childID},
	}

	for _, p := range principals {
		token, err := verifier.IssueToken(p, c.TokenTTL)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s, org %s):\n%s\n\n", p.Email, p.Role, p.OrgID, token)
	}

	return nil
}
