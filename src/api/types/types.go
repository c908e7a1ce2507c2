package types

import "time"

// Proposal categories
const (
	CategoryInfrastructure = "Infrastructure"
	CategoryEnvironment    = "Environment"
	CategorySocial         = "Social"
	CategoryGovernance     = "Governance"
	CategoryBudget         = "Budget"
)

// Proposal statuses
const (
	StatusActive    = "active"
	StatusPassed    = "passed"
	StatusRejected  = "rejected"
	StatusExpired   = "expired" // legacy value, accepted on read, never written
	StatusCancelled = "cancelled"
)

// Vote choices
const (
	ChoiceFor     = "for"
	ChoiceAgainst = "against"
	ChoiceAbstain = "abstain"
)

// Members (wallet identities with a reputation score owned by the
// identity service; this API only reads Reputation)
type Member struct {
	Address     string `gorm:"primaryKey;size:128"`
	DisplayName string `gorm:"size:64"`
	Email       string `gorm:"size:256"`
	Reputation  int    `gorm:"default:0"`
	CreatedAt   time.Time
}

// Governance proposals
type Proposal struct {
	ID           string `gorm:"primaryKey;size:36"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text;not null"`
	Category     string `gorm:"size:32;not null"`
	CreatorID    string `gorm:"size:128;index;not null"`
	Status       string `gorm:"size:16;index;not null"`
	QuorumVotes  int    `gorm:"not null"` // minimum total vote count to pass
	VotesFor     int    `gorm:"not null;default:0"`
	VotesAgainst int    `gorm:"not null;default:0"`
	VotesAbstain int    `gorm:"not null;default:0"`
	SupportPct   int    `gorm:"not null;default:0"`
	TxReceipt    string `gorm:"size:128"` // opaque ledger receipt, filled asynchronously
	EndAt        time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Votes        []Vote `gorm:"foreignKey:ProposalID"`
}

// Votes: one row per (proposal, voter), replaced in place on re-vote
type Vote struct {
	ID         string   `gorm:"primaryKey;size:36"`
	ProposalID string   `gorm:"size:36;not null;uniqueIndex:idx_votes_proposal_voter"`
	VoterID    string   `gorm:"size:128;not null;uniqueIndex:idx_votes_proposal_voter"`
	Choice     string   `gorm:"size:8;not null"`
	Weight     int      `gorm:"not null"` // reputation-derived, informational only
	CastAt     time.Time
	Proposal   Proposal `gorm:"foreignKey:ProposalID"`
}

// Citizen complaints
type Complaint struct {
	ID          string `gorm:"primaryKey;size:36"`
	Author      string `gorm:"size:128;index;not null"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Location    string `gorm:"size:255"`
	Category    string `gorm:"size:32"`
	Priority    int    `gorm:"default:3"` // 1 (low) .. 5 (critical)
	Confidence  int    `gorm:"default:0"` // 0..100, from the classifier
	Department  string `gorm:"size:64"`
	IsEmergency bool   `gorm:"default:false"`
	Status      string `gorm:"size:16;default:'open'"`
	TxReceipt   string `gorm:"size:128"`
	CreatedAt   time.Time
}

// Community events
type Event struct {
	ID          string `gorm:"primaryKey;size:36"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Location    string `gorm:"size:255"`
	CreatedBy   string `gorm:"size:128;not null"`
	StartAt     time.Time
	CreatedAt   time.Time
	RSVPs       []EventRSVP `gorm:"foreignKey:EventID"`
}

// Event RSVPs: one row per (event, member), replaced on change
type EventRSVP struct {
	EventID   string `gorm:"primaryKey;size:36"`
	Member    string `gorm:"primaryKey;size:128"`
	Status    string `gorm:"size:16;not null"` // going, maybe, declined
	UpdatedAt time.Time
	Event     Event  `gorm:"foreignKey:EventID"`
}

// Volunteer listings
type VolunteerRole struct {
	ID           string `gorm:"primaryKey;size:36"`
	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	Organization string `gorm:"size:128"`
	SpotsTotal   int    `gorm:"default:0"`
	SpotsFilled  int    `gorm:"default:0"`
	Open         bool   `gorm:"default:true"`
	CreatedBy    string `gorm:"size:128;not null"`
	CreatedAt    time.Time
}

// ValidCategory reports whether c is one of the fixed proposal categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryInfrastructure, CategoryEnvironment, CategorySocial,
		CategoryGovernance, CategoryBudget:
		return true
	}
	return false
}

// TerminalStatus reports whether a proposal status admits no further
// transitions.
func TerminalStatus(s string) bool {
	return s != StatusActive
}
