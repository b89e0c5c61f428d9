package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/repository"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscriberFilter(t *testing.T) {
	rest := uint(7)
	customer := &subscriber{principal: &entity.Principal{Kind: entity.KindCustomer}}
	customer.principal.ID = 1
	staff := &subscriber{principal: &entity.Principal{Kind: entity.KindStaff, RestaurantID: &rest}, restaurantIDs: map[uint]bool{rest: true}}
	admin := &subscriber{principal: &entity.Principal{Kind: entity.KindAdmin}}

	own := services.OrderEvent{OrderID: 1, CustomerID: 1, RestaurantID: 7}
	foreign := services.OrderEvent{OrderID: 2, CustomerID: 2, RestaurantID: 8}

	assert.True(t, customer.wants(own))
	assert.False(t, customer.wants(foreign))
	assert.True(t, staff.wants(own))
	assert.False(t, staff.wants(foreign))
	assert.True(t, admin.wants(foreign))
}

func TestOrderChangedNeverBlocks(t *testing.T) {
	h := NewOrderHub(repository.NewRestaurantRepository(nil), zap.NewNop())
	// hub not running: the backlog fills and further events are dropped
	for i := 0; i < cap(h.broadcast)+10; i++ {
		h.OrderChanged(services.OrderEvent{OrderID: uint(i)})
	}
	assert.Len(t, h.broadcast, cap(h.broadcast))
}

func TestHubStreamsOwnOrdersToCustomer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewOrderHub(repository.NewRestaurantRepository(nil), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	r := gin.New()
	r.GET("/ws/orders", func(c *gin.Context) {
		p := &entity.Principal{Kind: entity.KindCustomer}
		p.ID = 1
		utils.SetPrincipal(c, p)
	}, h.HandleWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/orders", nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration races the dial; keep publishing until the first event lands
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(20 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				h.OrderChanged(services.OrderEvent{OrderID: 99, CustomerID: 2, RestaurantID: 3, Status: entity.OrderPaid})
				h.OrderChanged(services.OrderEvent{OrderID: 10, CustomerID: 1, RestaurantID: 3, Status: entity.OrderPaid})
			}
		}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var ev services.OrderEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, uint(10), ev.OrderID)
	assert.Equal(t, uint(1), ev.CustomerID)
	assert.Equal(t, entity.OrderPaid, ev.Status)
}
