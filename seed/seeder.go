package seed

import (
	"log"
	"time"

	"Foresight/models"

	"gorm.io/gorm"
)

var predictions = []models.Prediction{
	{
		Title:       "Bitcoin closes above $100k this year",
		Description: "Resolves yes if BTC/USD closes above $100,000 on any major exchange before the deadline.",
		Category:    "crypto",
		Deadline:    time.Now().AddDate(0, 3, 0),
		MinStake:    1,
		Criteria:    "Daily close on Coinbase or Binance above $100,000.",
	},
	{
		Title:       "ETH staking yield stays above 3%",
		Description: "Resolves yes if the average Ethereum staking APR stays above 3% through the deadline.",
		Category:    "crypto",
		Deadline:    time.Now().AddDate(0, 1, 0),
		MinStake:    5,
		Criteria:    "Average APR reported by the beacon chain explorers.",
	},
	{
		Title:       "New L2 crosses 1M daily transactions",
		Description: "Resolves yes if any rollup launched this year crosses one million transactions in a single day.",
		Category:    "tech",
		Deadline:    time.Now().AddDate(0, 6, 0),
		MinStake:    2,
		Criteria:    "Public block explorer daily transaction count.",
	},
}

var follows = []models.EventFollow{
	{EventID: 1, UserID: "0x1111111111111111111111111111111111111111"},
	{EventID: 1, UserID: "0x2222222222222222222222222222222222222222"},
	{EventID: 2, UserID: "0x1111111111111111111111111111111111111111"},
}

func Load(db *gorm.DB) {

	err := db.Migrator().DropTable(&models.ChatMessage{}, &models.Stake{}, &models.EventFollow{}, &models.Prediction{})
	if err != nil {
		log.Fatalf("cannot drop tables: %v", err)
	}
	err = db.AutoMigrate(&models.Prediction{}, &models.EventFollow{}, &models.ChatMessage{}, &models.Stake{})
	if err != nil {
		log.Fatalf("cannot migrate tables: %v", err)
	}

	for i := range predictions {
		predictions[i].Prepare()
		if err := db.Model(&models.Prediction{}).Create(&predictions[i]).Error; err != nil {
			log.Fatalf("cannot seed predictions table: %v", err)
		}
	}
	for i := range follows {
		if _, err := follows[i].SaveEventFollow(db); err != nil {
			log.Fatalf("cannot seed event_follows table: %v", err)
		}
	}
}
