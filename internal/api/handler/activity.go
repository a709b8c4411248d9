package handler

import (
	"log"
	"net/http"
	"strconv"

	"corepulse/internal/services"

	"github.com/gorilla/websocket"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupActivity struct {
	container *do.Injector
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func (gr *groupActivity) List(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := ResolveValidUser(ctx, gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 0 {
		page = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	serviceActivity, err := do.Invoke[*services.ServiceActivity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	activities, err := serviceActivity.ListByUser(ctx, user.ID, limit, page*limit)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, activities, nil)
}

// Feed streams the live activity log over a websocket. The client only
// reads; the server closes on any write failure.
func (gr *groupActivity) Feed(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveValidUser(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceActivity, err := do.Invoke[*services.ServiceActivity](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	pubsub := serviceActivity.Subscribe(ctx)
	defer pubsub.Close()

	// drain client control frames so pings keep flowing
	go func() {
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				pubsub.Close()
				return
			}
		}
	}()

	for msg := range pubsub.Channel() {
		activity, err := services.DecodeFeedMessage(msg.Payload)
		if err != nil {
			log.Println("decode activity feed message:", err)
			continue
		}
		if !activity.Visible {
			continue
		}

		if err := ws.WriteJSON(activity); err != nil {
			return nil
		}
	}

	return nil
}
