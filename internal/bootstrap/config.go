package bootstrap

import (
	"github.com/ecomops/devicegate/cmd/flags"
	"github.com/ecomops/devicegate/internal/conf"
	"github.com/ecomops/devicegate/internal/db"
	"github.com/ecomops/devicegate/pkg/utils"
)

func InitConfig() {
	cfg, err := conf.Load(flags.DataDir, flags.Config)
	if err != nil {
		utils.Log.Fatalf("failed to load config: %+v", err)
	}
	conf.Conf = cfg
}

func InitData() {
	if err := db.Init(conf.Conf.Database.File); err != nil {
		utils.Log.Fatalf("failed to init storage: %+v", err)
	}
}
