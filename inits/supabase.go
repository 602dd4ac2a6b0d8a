package inits

import (
	"github.com/questforge/gateway/app_config"
	"github.com/questforge/gateway/graceful_shutdown"
	"github.com/questforge/gateway/supabase"
)

func NewAnonSupabaseClient(ac *app_config.AppConfig) *supabase.AnonClient {
	c := supabase.NewClient(ac.SupabaseUrl, ac.SupabaseAnonKey, ac.RequestTimeout)
	graceful_shutdown.AddOutputShutdownFunc(c.CloseIdleConnections)
	return &supabase.AnonClient{Client: c}
}

func NewServiceSupabaseClient(ac *app_config.AppConfig) *supabase.ServiceClient {
	c := supabase.NewClient(ac.SupabaseUrl, ac.SupabaseServiceRoleKey, ac.RequestTimeout)
	graceful_shutdown.AddOutputShutdownFunc(c.CloseIdleConnections)
	return &supabase.ServiceClient{Client: c}
}
