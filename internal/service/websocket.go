package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// wsClient 代表一個觀看房間的 WebSocket 連線
// 這條通道只往外推播，收到的訊息除了控制用途外一律忽略
type wsClient struct {
	conn   *websocket.Conn
	roomID uint
	send   chan []byte // 緩衝的推播通道
}

// WebSocketManager 管理房間的即時推播連線
// 已持久化的訊息（使用者與 AI 的發言）和系統通知都會廣播給房間內的所有連線
type WebSocketManager struct {
	clients    map[uint]map[*wsClient]bool // roomID -> client -> bool
	clientsMux sync.RWMutex
	logger     zerolog.Logger
}

func NewWebSocketManager(logger zerolog.Logger) *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[uint]map[*wsClient]bool),
		logger:  logger,
	}
}

// HandleConnection 接手一條新的 WebSocket 連線，直到連線關閉才返回
func (m *WebSocketManager) HandleConnection(conn *websocket.Conn, roomID uint) {
	client := &wsClient{
		conn:   conn,
		roomID: roomID,
		send:   make(chan []byte, 256),
	}

	m.addClient(client)

	defer func() {
		m.removeClient(client)
		conn.Close()
	}()

	go m.writePump(client)
	m.readPump(client)
}

// readPump 持續讀取以偵測連線關閉與回應心跳
func (m *WebSocketManager) readPump(client *wsClient) {
	client.conn.SetReadLimit(4096)
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn().Err(err).Uint("room_id", client.roomID).Msg("websocket unexpected close error")
			}
			break
		}
		// 觀看通道不處理客戶端傳入的內容
	}
}

// writePump 處理向客戶端發送訊息與心跳
func (m *WebSocketManager) writePump(client *wsClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastJSON 將 payload 編碼後廣播給房間內所有連線
func (m *WebSocketManager) BroadcastJSON(roomID uint, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error().Err(err).Uint("room_id", roomID).Msg("broadcast payload encoding error")
		return
	}

	// 迭代必須在持鎖期間完成，避免與加入/離開的寫入撞在一起
	var slow []*wsClient
	m.clientsMux.RLock()
	for client := range m.clients[roomID] {
		select {
		case client.send <- data:
		default:
			slow = append(slow, client)
		}
	}
	m.clientsMux.RUnlock()

	// 客戶端消化不及，放棄這些連線；清理需要寫鎖，放到釋放讀鎖之後
	for _, client := range slow {
		m.removeClient(client)
		client.conn.Close()
	}
}

// BroadcastSystemMessage 發送系統通知到指定房間
func (m *WebSocketManager) BroadcastSystemMessage(roomID uint, content string) {
	m.BroadcastJSON(roomID, map[string]interface{}{
		"type":    "system",
		"content": content,
	})
}

func (m *WebSocketManager) addClient(client *wsClient) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if m.clients[client.roomID] == nil {
		m.clients[client.roomID] = make(map[*wsClient]bool)
	}
	m.clients[client.roomID][client] = true
}

func (m *WebSocketManager) removeClient(client *wsClient) {
	m.clientsMux.Lock()
	defer m.clientsMux.Unlock()

	if clients, ok := m.clients[client.roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(m.clients, client.roomID)
		}
	}
}

// RoomClientCount 取得指定房間目前的連線數量
func (m *WebSocketManager) RoomClientCount(roomID uint) int {
	m.clientsMux.RLock()
	defer m.clientsMux.RUnlock()

	return len(m.clients[roomID])
}
