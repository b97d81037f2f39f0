package models

type UserStatus string
type UserRole string
type JobStatus string
type JobUrgency string
type ApplicantStatus string
type SubscriptionStatus string

const (
	UserStatusPending     UserStatus = "pending"
	UserStatusActive      UserStatus = "active"
	UserStatusNotVerified UserStatus = "notverified"
	UserStatusSuspended   UserStatus = "suspended"
	UserStatusInactive    UserStatus = "inactive"

	UserRoleCustomer     UserRole = "customer"
	UserRoleTradesperson UserRole = "tradesperson"
	UserRoleAdmin        UserRole = "admin"

	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "inProgress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"

	JobUrgencyLow    JobUrgency = "Low"
	JobUrgencyMedium JobUrgency = "Medium"
	JobUrgencyHigh   JobUrgency = "High"

	ApplicantStatusPending  ApplicantStatus = "pending"
	ApplicantStatusAccepted ApplicantStatus = "accepted"
	ApplicantStatusRejected ApplicantStatus = "rejected"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// jobTransitions - таблица допустимых переходов статуса работы.
// pending -> inProgress происходит только через принятие заявки,
// прямой PATCH /status этот переход не делает.
var jobTransitions = map[JobStatus]map[JobStatus]bool{
	JobStatusPending: {
		JobStatusCancelled: true,
	},
	JobStatusInProgress: {
		JobStatusCompleted: true,
		JobStatusCancelled: true,
	},
	// completed и cancelled - терминальные
	JobStatusCompleted: {},
	JobStatusCancelled: {},
}

// CanTransitionJob проверяет переход статуса по таблице
func CanTransitionJob(from, to JobStatus) bool {
	allowed, ok := jobTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// IsTerminalJobStatus - completed/cancelled менять нельзя
func IsTerminalJobStatus(s JobStatus) bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

func ValidJobStatus(s JobStatus) bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

func ValidApplicantStatus(s ApplicantStatus) bool {
	switch s {
	case ApplicantStatusPending, ApplicantStatusAccepted, ApplicantStatusRejected:
		return true
	}
	return false
}

func ValidUserStatus(s UserStatus) bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusNotVerified, UserStatusSuspended, UserStatusInactive:
		return true
	}
	return false
}

// userTransitions - таблица переходов статуса аккаунта.
// pending/notverified -> active только через подтверждение email,
// админ может блокировать и возвращать аккаунты.
var userTransitions = map[UserStatus]map[UserStatus]bool{
	UserStatusPending: {
		UserStatusActive:      true,
		UserStatusNotVerified: true,
		UserStatusSuspended:   true,
	},
	UserStatusNotVerified: {
		UserStatusActive:    true,
		UserStatusSuspended: true,
	},
	UserStatusActive: {
		UserStatusSuspended: true,
		UserStatusInactive:  true,
	},
	UserStatusSuspended: {
		UserStatusActive:   true,
		UserStatusInactive: true,
	},
	UserStatusInactive: {
		UserStatusActive: true,
	},
}

func CanTransitionUser(from, to UserStatus) bool {
	allowed, ok := userTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}
