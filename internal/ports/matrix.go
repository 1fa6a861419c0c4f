package ports

import (
	"context"

	"nemt-route-service/internal/domain"
)

// MatrixResult holds the pairwise road tables for one batched call.
// Entries are nullable: the matrix service reports unreachable pairs as null.
type MatrixResult struct {
	// DistanceMeters and DurationSeconds are N×N, 0-indexed in input order.
	DistanceMeters  [][]*float64
	DurationSeconds [][]*float64
}

// MatrixAPI computes pairwise driving distance/duration tables for an
// ordered coordinate list in one batched call.
type MatrixAPI interface {
	FetchMatrix(ctx context.Context, locations []domain.Coordinates) (*MatrixResult, error)
}
