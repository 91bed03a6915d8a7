package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/prediction-league-poc/internal/shared/config"
	"github.com/radieske/prediction-league-poc/internal/shared/logger"
	"github.com/radieske/prediction-league-poc/internal/shared/metrics"
	"github.com/radieske/prediction-league-poc/pkg/contracts/events"
	"github.com/radieske/prediction-league-poc/pkg/contracts/status"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Métricas Prometheus para monitoramento de conexões e mensagens
	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "provider_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	wsMessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "provider_ws_messages_sent_total",
		Help: "Total de mensagens WS enviadas",
	})
)

// simMatch é uma partida simulada avançando NS -> 1H -> HT -> 2H -> FT.
// Cada tick do simulador equivale a um minuto de jogo.
type simMatch struct {
	id        int64
	homeTeam  string
	awayTeam  string
	kickoff   time.Time
	minute    int
	homeGoals int
	awayGoals int
	version   int
}

// catálogo fixo de partidas, com inícios escalonados pra sempre haver
// jogo agendado, ao vivo e encerrado ao mesmo tempo
func newCatalog(now time.Time) []*simMatch {
	teams := [][2]string{
		{"Flamengo", "Palmeiras"},
		{"Grêmio", "Internacional"},
		{"Corinthians", "Santos"},
		{"São Paulo", "Vasco"},
		{"Cruzeiro", "Atlético-MG"},
		{"Botafogo", "Fluminense"},
	}
	out := make([]*simMatch, 0, len(teams))
	for i, t := range teams {
		out = append(out, &simMatch{
			id:       int64(1001 + i),
			homeTeam: t[0],
			awayTeam: t[1],
			// uma partida já em andamento, as demais a cada 30min
			kickoff: now.Add(time.Duration(i-1) * 30 * time.Minute),
		})
	}
	return out
}

// status deriva o código do provedor a partir do minuto corrente
func (m *simMatch) status(now time.Time) status.Status {
	if now.Before(m.kickoff) {
		return status.NotStarted
	}
	switch {
	case m.minute < 45:
		return status.FirstHalf
	case m.minute == 45:
		return status.HalfTime
	case m.minute < 90:
		return status.SecondHalf
	default:
		return status.FullTime
	}
}

// tick avança um minuto de jogo e sorteia gols enquanto a bola rola
func (m *simMatch) tick(now time.Time) {
	st := m.status(now)
	if st == status.NotStarted || st == status.FullTime {
		return
	}
	m.minute++
	if st == status.HalfTime {
		return
	}
	// ~4% de chance de gol por minuto pra cada lado
	if rand.Intn(100) < 4 {
		m.homeGoals++
	}
	if rand.Intn(100) < 4 {
		m.awayGoals++
	}
}

func (m *simMatch) update(now time.Time, source string) events.MatchUpdate {
	m.version++
	st := m.status(now)
	ev := events.MatchUpdate{
		MatchID:   m.id,
		LeagueID:  "71",
		Season:    "2025",
		HomeTeam:  m.homeTeam,
		AwayTeam:  m.awayTeam,
		Status:    string(st),
		Kickoff:   m.kickoff.UTC(),
		Visible:   true,
		UpdatedAt: now.UTC(),
		Source:    source,
		Version:   m.version,
	}
	// gols ficam nulos até a partida começar
	if !st.Scheduled() {
		hg, ag := m.homeGoals, m.awayGoals
		ev.HomeGoals = &hg
		ev.AwayGoals = &ag
	}
	return ev
}

// Conexão de um cliente WebSocket
type clientConn struct {
	id   string
	conn *websocket.Conn
}

// hub gerencia os clientes conectados e faz broadcast das atualizações
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{
		clients: make(map[string]*clientConn),
		log:     log,
	}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		} else {
			wsMessagesSent.Inc()
		}
	}
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, wsMessagesSent)

	h := newHub(log)
	catalog := newCatalog(time.Now())

	// A cada 3s cada partida avança um minuto e tem seu estado retransmitido
	go func() {
		ticker := time.NewTicker(3 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			for _, m := range catalog {
				m.tick(now)
				ev := m.update(now, cfg.ServiceName)
				b, _ := json.Marshal(ev)
				h.broadcast(b)
			}
		}
	}()

	appMux := http.NewServeMux()
	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		// Mantém a conexão viva e remove o cliente ao desconectar
		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			_ = conn.SetReadDeadline(time.Time{})
			for {
				// Lê e descarta mensagens do cliente pra manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// metrics/health em porta separada
	metrics.StartMetricsServer(cfg.MetricsPort, nil)
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	addr := ":" + cfg.HTTPPort
	log.Info("provider-simulator listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, appMux); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
