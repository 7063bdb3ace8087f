package storage

import (
	_ "embed"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/azaliaz/bookshop/internal/domain/models"
)

//go:embed fixtures/records.yaml
var recordsYAML []byte

// Records is the seed data of a store.
type Records struct {
	Books   []models.Book
	Users   []models.User
	Reviews []models.Review
}

type fixtureUser struct {
	models.User `yaml:",inline"`
	Password    string `yaml:"password"`
}

type fixtureFile struct {
	Books   []models.Book   `yaml:"books"`
	Users   []fixtureUser   `yaml:"users"`
	Reviews []models.Review `yaml:"reviews"`
}

// LoadRecords decodes the embedded seed file, hashing user passwords with
// the given bcrypt cost.
func LoadRecords(cost int) (Records, error) {
	return ParseRecords(recordsYAML, cost)
}

func ParseRecords(data []byte, cost int) (Records, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Records{}, fmt.Errorf("decode records: %w", err)
	}
	recs := Records{
		Books:   f.Books,
		Users:   make([]models.User, 0, len(f.Users)),
		Reviews: f.Reviews,
	}
	for _, fu := range f.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(fu.Password), cost)
		if err != nil {
			return Records{}, fmt.Errorf("hash password of %s: %w", fu.Email, err)
		}
		u := fu.User
		u.PassHash = string(hash)
		recs.Users = append(recs.Users, u)
	}
	return recs, nil
}
