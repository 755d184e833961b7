package models

// UserRole is carried in the "role" claim of issued tokens.
type UserRole string

const RoleAdmin UserRole = "admin"
