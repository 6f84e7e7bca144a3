package entity

import "time"

// Group is the root of a user's todo hierarchy.
type Group struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// List belongs to at most one group.
type List struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	GroupID   *string   `json:"groupId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Task struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner"`
	ListID    string     `json:"listId"`
	Title     string     `json:"title"`
	Note      string     `json:"note"`
	Completed bool       `json:"completed"`
	Important bool       `json:"important"`
	DueDate   *time.Time `json:"dueDate"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Step struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	TaskID    string    `json:"taskId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is everything a user owns, as returned to the client on login.
type Snapshot struct {
	Groups []Group `json:"groups"`
	Lists  []List  `json:"lists"`
	Tasks  []Task  `json:"tasks"`
	Steps  []Step  `json:"steps"`
}

// NewSnapshot returns a snapshot whose slices encode as [] rather than null.
func NewSnapshot() *Snapshot {
	return &Snapshot{Groups: []Group{}, Lists: []List{}, Tasks: []Task{}, Steps: []Step{}}
}
