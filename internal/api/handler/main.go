package handler

import (
	"net/http"

	"corepulse/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "⛏️")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated request.
		routesAPIv1.GET("", Hello)

		u := groupUser{cfg.Container}
		routesAPIv1Auth := routesAPIv1.Group("/auth")
		{
			routesAPIv1Auth.Use(RateLimit(cfg.Container, services.AUTH_RATE_LIMIT_PER_MINUTE, func(c echo.Context) string {
				return services.LimitKeyAuth(c.RealIP())
			}))
			routesAPIv1Auth.GET("/nonce", u.Nonce)
		}
		routesAPIv1.POST("/user/connect", u.Connect)
		routesAPIv1.GET("/user/me", u.Me)
		routesAPIv1.GET("/user/referral", u.Referral)
		routesAPIv1.POST("/referral/register", u.RegisterReferral)
		routesAPIv1.GET("/referrals", u.Referral)

		m := groupMining{cfg.Container}
		routesAPIv1Mining := routesAPIv1.Group("/mining")
		{
			routesAPIv1Mining.Use(RateLimit(cfg.Container, services.MINING_RATE_LIMIT_PER_MINUTE, func(c echo.Context) string {
				// mining budgets are per account, not per address
				if id := AuthUserID(c); id != "" {
					return services.LimitKeyMining(id)
				}
				return services.LimitKeyMining(c.RealIP())
			}))
			routesAPIv1Mining.POST("/start", m.Start)
			routesAPIv1Mining.POST("/stop", m.Stop)
			routesAPIv1Mining.GET("/status", m.Status)
			routesAPIv1Mining.GET("/limit", m.Limit)
		}

		a := groupActivity{cfg.Container}
		routesAPIv1.GET("/activities", a.List)
		routesAPIv1.GET("/activities/feed", a.Feed)

		p := groupProgress{cfg.Container}
		routesAPIv1.GET("/earnings", p.Earnings)
		routesAPIv1.GET("/streak", p.Streak)
		routesAPIv1.GET("/achievements", p.Achievements)
		routesAPIv1.GET("/challenges", p.Challenges)
		routesAPIv1.GET("/rewards", p.Rewards)
		routesAPIv1.POST("/rewards/:reward/claim", p.ClaimReward)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard", l.Get)
		routesAPIv1.GET("/epoch/current", l.CurrentEpoch)

		cr := groupCrew{cfg.Container}
		routesAPIv1.GET("/crews", cr.List)
		routesAPIv1.POST("/crews", cr.Create)
		routesAPIv1.GET("/crew/:crew", cr.Show)
		routesAPIv1.POST("/crew/:crew/join", cr.Join)
		routesAPIv1.POST("/crew/leave", cr.Leave)

		n := groupNFT{cfg.Container}
		routesAPIv1.GET("/nft", n.List)
		routesAPIv1.POST("/nft/mint", n.Mint)
		routesAPIv1.POST("/nft/lootbox", n.OpenLootBox)

		ch := groupChain{cfg.Container}
		routesAPIv1.GET("/tx/:hash", ch.Show)
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
