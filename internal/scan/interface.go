package scan

import (
	"context"
	"sigscan/pkg/domain"
)

//go:generate mockgen -package mockscan -source=interface.go -destination=mock/mockscan.go *
type Scanner interface {
	Scan(ctx context.Context, root string, blocklistPath string) ([]domain.Result, error)
	ScanLines(ctx context.Context, root string, blocklistPath string) ([]string, error)
	InvalidateBlocklist(ctx context.Context)
}
