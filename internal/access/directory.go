package access

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"grain-auction/internal/models"
)

// StaticDirectory is an in-process stand-in for the identity service,
// seeded from YAML. Accreditation can be changed at runtime to mimic the
// external approval workflow.
type StaticDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
}

type directoryFile struct {
	Users []models.User `yaml:"users"`
}

// NewStaticDirectory builds a directory from a list of users
func NewStaticDirectory(users ...models.User) *StaticDirectory {
	d := &StaticDirectory{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		d.users[u.UserID] = u
	}
	return d
}

// ParseDirectoryYAML decodes and validates a directory payload.
func ParseDirectoryYAML(data []byte) (*StaticDirectory, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("directory: payload is empty")
	}
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("directory: decode: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Users))
	for i, u := range f.Users {
		if strings.TrimSpace(u.UserID) == "" {
			return nil, fmt.Errorf("directory: user %d has no id", i)
		}
		if _, dup := seen[u.UserID]; dup {
			return nil, fmt.Errorf("directory: duplicate user %s", u.UserID)
		}
		seen[u.UserID] = struct{}{}
		if u.Role != models.RoleAdmin && u.Role != models.RoleBuyer {
			return nil, fmt.Errorf("directory: user %s has unknown role %q", u.UserID, u.Role)
		}
		switch u.Accreditation {
		case "":
			f.Users[i].Accreditation = models.AccreditationPending
		case models.AccreditationPending, models.AccreditationApproved, models.AccreditationRejected:
		default:
			return nil, fmt.Errorf("directory: user %s has unknown accreditation %q", u.UserID, u.Accreditation)
		}
	}
	return NewStaticDirectory(f.Users...), nil
}

// LoadDirectoryFile reads a YAML directory from disk.
func LoadDirectoryFile(path string) (*StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	d, err := ParseDirectoryYAML(data)
	if err != nil {
		return nil, fmt.Errorf("directory: %s: %w", path, err)
	}
	return d, nil
}

// DefaultDirectory returns the demo users used when no directory file is configured.
func DefaultDirectory() *StaticDirectory {
	return NewStaticDirectory(
		models.User{UserID: "admin", FullName: "Auction Administrator", Company: "GrainCompany", Role: models.RoleAdmin, Accreditation: models.AccreditationApproved},
		models.User{UserID: "buyer-approved", FullName: "Approved Buyer", Company: "Agro Trade LLC", Role: models.RoleBuyer, Accreditation: models.AccreditationApproved},
		models.User{UserID: "buyer-pending", FullName: "Pending Buyer", Company: "New Farm LLC", Role: models.RoleBuyer, Accreditation: models.AccreditationPending},
	)
}

// Lookup implements Directory
func (d *StaticDirectory) Lookup(_ context.Context, userID string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[userID]
	if !ok {
		return models.User{}, ErrUnknownUser
	}
	return u, nil
}

// SetAccreditation updates a user's accreditation status
func (d *StaticDirectory) SetAccreditation(userID string, status models.Accreditation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return fmt.Errorf("directory: %s: %w", userID, ErrUnknownUser)
	}
	u.Accreditation = status
	d.users[userID] = u
	return nil
}

// Upsert adds or replaces a user
func (d *StaticDirectory) Upsert(u models.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.UserID] = u
}
