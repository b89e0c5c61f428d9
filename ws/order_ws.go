package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/repository"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 16
)

// OrderHub streams order status events to connected customers and restaurant staff.
type OrderHub struct {
	clients    map[*subscriber]bool
	broadcast  chan services.OrderEvent
	register   chan *subscriber
	unregister chan *subscriber
	done       chan struct{}

	restaurants *repository.RestaurantRepository
	log         *zap.Logger
}

// subscriber is one websocket connection and what it may see.
type subscriber struct {
	conn          *websocket.Conn
	principal     *entity.Principal
	restaurantIDs map[uint]bool
	send          chan services.OrderEvent
}

func (s *subscriber) wants(ev services.OrderEvent) bool {
	switch s.principal.Kind {
	case entity.KindCustomer:
		return ev.CustomerID == s.principal.ID
	case entity.KindAdmin:
		return true
	}
	return s.restaurantIDs[ev.RestaurantID]
}

func NewOrderHub(restaurants *repository.RestaurantRepository, log *zap.Logger) *OrderHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderHub{
		clients:     make(map[*subscriber]bool),
		broadcast:   make(chan services.OrderEvent, 256),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		done:        make(chan struct{}),
		restaurants: restaurants,
		log:         log.Named("order_ws"),
	}
}

// OrderChanged queues ev for delivery. It never blocks the caller.
func (h *OrderHub) OrderChanged(ev services.OrderEvent) {
	select {
	case h.broadcast <- ev:
	default:
		h.log.Warn("order event dropped: hub backlog full", zap.Uint("order_id", ev.OrderID))
	}
}

// Run owns the client set until ctx is done.
func (h *OrderHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for sub := range h.clients {
				close(sub.send)
				delete(h.clients, sub)
			}
			return

		case sub := <-h.register:
			h.clients[sub] = true

		case sub := <-h.unregister:
			if _, ok := h.clients[sub]; ok {
				delete(h.clients, sub)
				close(sub.send)
			}

		case ev := <-h.broadcast:
			for sub := range h.clients {
				if !sub.wants(ev) {
					continue
				}
				select {
				case sub.send <- ev:
				default:
					// too slow; drop the connection rather than the hub
					delete(h.clients, sub)
					close(sub.send)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket serves GET /ws/orders. The principal comes from WSAuthMiddleware.
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	p := utils.CurrentPrincipal(c)
	if p == nil {
		resp.Unauthorized(c, "missing principal")
		return
	}
	ids, err := h.restaurants.IDsOperatedBy(p)
	if err != nil {
		resp.ServerError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{
		conn:          conn,
		principal:     p,
		restaurantIDs: make(map[uint]bool, len(ids)),
		send:          make(chan services.OrderEvent, sendBuffer),
	}
	for _, id := range ids {
		sub.restaurantIDs[id] = true
	}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(sub)
	go h.readPump(sub)
}

// readPump only watches for close and pong frames; clients do not send data.
func (h *OrderHub) readPump(sub *subscriber) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
		sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *OrderHub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(ev); err != nil {
				h.log.Debug("ws write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
