package configs

import (
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog/log"
)

func NewMidtransClient(env ENV) *snap.Client {
	envType := midtrans.Sandbox
	if env.MidtransEnv == "production" {
		envType = midtrans.Production
	}

	var client snap.Client
	client.New(env.MidtransServerKey, envType)
	midtrans.ClientKey = env.MidtransClientKey
	log.Info().Str("env", env.MidtransEnv).Msg("Midtrans Snap Client initialized")
	return &client
}
