package app

import (
	"database/sql"

	"github.com/reachhk/engage/internal/config"
	"github.com/reachhk/engage/internal/db"
	"github.com/reachhk/engage/internal/grading"
	"github.com/reachhk/engage/internal/logging"
	"github.com/reachhk/engage/internal/pet"
	"github.com/reachhk/engage/internal/timeauction"
)

// Services: три доменных сервиса поверх одного пула Postgres.
type Services struct {
	Pets    *pet.Service
	Grading *grading.Service
	Auction *timeauction.Service
}

// NewServices wires the Postgres repos into the services. lbCache may be nil.
func NewServices(database *sql.DB, cfg *config.Config, lg *logging.Log, lbCache timeauction.LeaderboardCache) *Services {
	auctionOpts := []timeauction.Option{timeauction.WithLocation(cfg.Location)}
	if lbCache != nil {
		auctionOpts = append(auctionOpts, timeauction.WithCache(lbCache))
	}
	return &Services{
		Pets: pet.NewService(db.NewPetRepo(database), lg.Module("pet")),
		Grading: grading.NewService(db.NewGradingRepo(database), nil,
			grading.LogNotifier{Log: lg.Module("notify")}, lg.Module("grading"),
			grading.WithModel(cfg.GradingModel),
			grading.WithLocation(cfg.Location),
		),
		Auction: timeauction.NewService(db.NewAuctionRepo(database), lg.Module("timeauction"), auctionOpts...),
	}
}
