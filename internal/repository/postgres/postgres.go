package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telemed-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type consultationRepository struct {
	db *sqlx.DB
}

type prescriptionRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewConsultationRepository(db *sqlx.DB) repository.ConsultationRepository {
	return &consultationRepository{db: db}
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}
