package db

import (
	"time"

	"github.com/google/uuid"
)

type Driver struct {
	ID          int32
	Season      int32
	Code        string
	Name        string
	Constructor string
}

type Race struct {
	ID        uuid.UUID
	Season    int32
	Round     int32
	Name      string
	Fp1Time   time.Time
	StartTime time.Time
}
