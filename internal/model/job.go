package model

import "time"

type JobStatus string

const (
	JobQueued JobStatus = "queued"
	JobDone   JobStatus = "done"
	JobFailed JobStatus = "failed"
)

func (s JobStatus) String() string { return string(s) }

func (s JobStatus) Valid() bool {
	return s == JobQueued || s == JobDone || s == JobFailed
}

// Job is a batch normalization request persisted in the jobs table.
type Job struct {
	ID        string    `db:"id"          json:"id"`
	ClientID  int64     `db:"client_id"   json:"client_id"`
	Region    string    `db:"region"      json:"region"`
	Status    JobStatus `db:"status"      json:"status"`
	Total     int       `db:"total"       json:"total"`
	Valid     int       `db:"valid"       json:"valid"`
	CreatedAt time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt time.Time `db:"updated_at"  json:"updated_at"`
}

// JobEnvelope is the payload published to Kafka through the outbox.
type JobEnvelope struct {
	ID       string   `json:"id"`        // job ULID
	ClientID int64    `json:"client_id"` // clients.id
	Region   string   `json:"region"`
	Strings  []string `json:"strings"`
}

// NormalizedNumber is one row of the ClickHouse results table. Invalid
// inputs are stored too, with Valid=false and empty renderings.
type NormalizedNumber struct {
	JobID          string    `db:"job_id"          json:"job_id"`
	ClientID       int64     `db:"client_id"       json:"client_id"`
	Input          string    `db:"input"           json:"input"`
	Valid          bool      `db:"valid"           json:"valid"`
	Type           string    `db:"type"            json:"type"`
	E164           string    `db:"e164"            json:"e164"`
	International  string    `db:"international"   json:"international"`
	National       string    `db:"national"        json:"national"`
	CountryCode    string    `db:"country_code"    json:"country_code"`
	RegionCode     string    `db:"region_code"     json:"region_code"`
	NationalNumber string    `db:"national_number" json:"national_number"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
