// Package seed loads the fixture data set used by local development and
// the integration tests.
package seed

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hammerio/internal/model"
)

// Password is the plain text password of every seeded user.
const Password = "plaintext1"

// Users returns the seeded users without password hashes.
func Users() []model.User {
	return []model.User{
		{ID: "a1", Username: "BobSagat", Email: "sagat@example.com", FirstName: "Bob", LastName: "Sagat"},
		{ID: "a2", Username: "jreach", Email: "jreach@example.com", FirstName: "Jack", LastName: "Reacher"},
		{ID: "a3", Username: "buddy", Email: "buddy@example.com", FirstName: "Buddy", LastName: "Holly"},
		{ID: "a4", Username: "johnnyb", Email: "hammer.io.team@gmail.com", FirstName: "Johnny", LastName: "Bravo"},
		{ID: "a5", Username: "thehulk", Email: "hulk@example.com", FirstName: "Bruce", LastName: "Banner"},
	}
}

// Projects returns the seeded projects.
func Projects() []model.Project {
	return []model.Project{
		{
			ID:          "b1",
			ProjectName: "TMNT",
			Description: "You gotta know what a crumpet is to understand cricket!",
			Version:     "1.2.3",
			License:     "MIT",
			Authors:     "Casey Jones, Raphael",
		},
		{
			ID:          "b2",
			ProjectName: "hammer-io",
			Description: "Hit it with a hammer.",
			Version:     "0.0.1",
			License:     "MIT",
			Authors:     "Jack Reacher",
		},
		{
			ID:          "b3",
			ProjectName: "drumitdown",
			Description: "Keep the beat going.",
			Version:     "0.1.0",
			License:     "Apache-2.0",
			Authors:     "Buddy Holly",
		},
	}
}

// Members returns the seeded membership edges.
func Members() []model.ProjectMember {
	return []model.ProjectMember{
		{ProjectID: "b1", UserID: "a4", Role: model.RoleOwner},
		{ProjectID: "b1", UserID: "a1", Role: model.RoleContributor},
		{ProjectID: "b1", UserID: "a2", Role: model.RoleContributor},
		{ProjectID: "b1", UserID: "a3", Role: model.RoleContributor},
		{ProjectID: "b2", UserID: "a2", Role: model.RoleOwner},
		{ProjectID: "b2", UserID: "a1", Role: model.RoleContributor},
		{ProjectID: "b3", UserID: "a3", Role: model.RoleOwner},
	}
}

// Credentials returns the seeded external provider links.
func Credentials() []model.ExternalCredential {
	return []model.ExternalCredential{
		{ID: "c1", UserID: "a1", Provider: model.ProviderGithub, Identity: "BobSagat", Token: "gh-token-a1-0000"},
		{ID: "c2", UserID: "a4", Provider: model.ProviderHeroku, Identity: "hammer.io.team@gmail.com", Token: "heroku-token-a4"},
		{ID: "c3", UserID: "a4", Provider: model.ProviderTravis, Identity: "johnnyb", Token: "travis-token-a4"},
	}
}

// Populate inserts the fixtures. Rows that already exist are left alone;
// with reset every table is emptied first.
func Populate(ctx context.Context, db *gorm.DB, reset bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reset {
			for _, table := range []interface{}{
				&model.ProjectMember{},
				&model.ExternalCredential{},
				&model.Project{},
				&model.User{},
			} {
				if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
					return fmt.Errorf("clear table: %w", err)
				}
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		users := Users()
		for i := range users {
			users[i].PasswordHash = string(hash)
		}

		insert := func(what string, rows interface{}) error {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error; err != nil {
				return fmt.Errorf("seed %s: %w", what, err)
			}
			return nil
		}
		projects := Projects()
		members := Members()
		creds := Credentials()
		if err := insert("users", &users); err != nil {
			return err
		}
		if err := insert("projects", &projects); err != nil {
			return err
		}
		if err := insert("members", &members); err != nil {
			return err
		}
		if err := insert("credentials", &creds); err != nil {
			return err
		}
		return nil
	})
}
