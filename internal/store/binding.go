package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trigger is the event kind a binding reacts to.
type Trigger string

const (
	// TriggerGesture fires when the confirmed label changes to the binding's label.
	TriggerGesture Trigger = "gesture"
	// TriggerClick fires on a dwell click.
	TriggerClick Trigger = "click"
	// TriggerPinch fires when a pinch starts.
	TriggerPinch Trigger = "pinch"
)

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerGesture, TriggerClick, TriggerPinch:
		return true
	}
	return false
}

// Binding maps a trigger to a plugin action.
type Binding struct {
	ID      string  `json:"id"`
	Trigger Trigger `json:"trigger"`
	// Label is the gesture label for gesture triggers and empty otherwise.
	Label      string          `json:"label,omitempty"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config,omitempty"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  time.Time       `json:"created_at"`
}

// BindingRepository provides CRUD operations for bindings.
type BindingRepository struct {
	db *sql.DB
}

// Bindings returns the binding repository for this store.
func (s *Store) Bindings() *BindingRepository {
	return &BindingRepository{db: s.db}
}

const bindingColumns = `id, trigger, label, plugin_name, action_name, config, enabled, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBinding(row rowScanner) (*Binding, error) {
	b := &Binding{}
	var config string
	var enabled int
	if err := row.Scan(&b.ID, &b.Trigger, &b.Label, &b.PluginName, &b.ActionName, &config, &enabled, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Config = json.RawMessage(config)
	b.Enabled = enabled != 0
	return b, nil
}

// Create inserts a new binding. An empty ID is filled with a new UUID.
func (r *BindingRepository) Create(b *Binding) error {
	if !b.Trigger.Valid() {
		return fmt.Errorf("unknown trigger %q", b.Trigger)
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if b.Trigger != TriggerGesture {
		b.Label = ""
	}
	b.CreatedAt = time.Now().UTC()

	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO bindings (`+bindingColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, string(b.Trigger), b.Label, b.PluginName, b.ActionName, string(config), b.Enabled, b.CreatedAt,
	)
	return err
}

// GetByID retrieves a binding by its ID.
func (r *BindingRepository) GetByID(id string) (*Binding, error) {
	b, err := scanBinding(r.db.QueryRow(
		`SELECT `+bindingColumns+` FROM bindings WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Match returns the enabled bindings for a trigger. label is only compared
// for gesture triggers.
func (r *BindingRepository) Match(trigger Trigger, label string) ([]*Binding, error) {
	if trigger != TriggerGesture {
		label = ""
	}
	return r.query(
		`SELECT `+bindingColumns+` FROM bindings
		 WHERE trigger = ? AND label = ? AND enabled = 1 ORDER BY created_at`,
		string(trigger), label,
	)
}

// List retrieves all bindings, newest first.
func (r *BindingRepository) List() ([]*Binding, error) {
	return r.query(`SELECT ` + bindingColumns + ` FROM bindings ORDER BY created_at DESC`)
}

func (r *BindingRepository) query(q string, args ...any) ([]*Binding, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bindings []*Binding
	for rows.Next() {
		b, err := scanBinding(rows)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bindings, nil
}

// Update updates an existing binding.
func (r *BindingRepository) Update(b *Binding) error {
	if !b.Trigger.Valid() {
		return fmt.Errorf("unknown trigger %q", b.Trigger)
	}
	if b.Trigger != TriggerGesture {
		b.Label = ""
	}

	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE bindings SET trigger = ?, label = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		string(b.Trigger), b.Label, b.PluginName, b.ActionName, string(config), enabled, b.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a binding by its ID.
func (r *BindingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM bindings WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
