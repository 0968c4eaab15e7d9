package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/OFFIS-RIT/plotline/backend/internal/queue"
	mid "github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store/memory"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"

	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

const sampleText = `书名：青云志
作者：佚名

第一章 相遇
王小明来到青云山，遇到了李四。
李四是王小明的师父。王小明拜李四为师。
小明说：“李四，我要学剑。”

第二章 交手
第二天，王小明在青云山修炼。李四看着小明笑了。
张三来到青云山，攻击王小明。
王小明击败了张三，因为李四传授了他剑法。

第三章 追踪
张三受伤了，逃跑到落霞镇。
王小明和李四去落霞镇找张三。
张三已经康复，他很愤怒。
`

type fakePublisher struct {
	keys   []string
	bodies [][]byte
	err    error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp091.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.bodies = append(p.bodies, msg.Body)
	return nil
}

type fakeObjects struct {
	files   map[string][]byte
	deleted []string
}

func (o *fakeObjects) PutNovel(_ context.Context, novelID, name string, data []byte) (string, error) {
	key := "novels/" + novelID + ".txt"
	o.files[key] = data
	return key, nil
}

func (o *fakeObjects) DeleteFile(_ context.Context, key string) error {
	o.deleted = append(o.deleted, key)
	delete(o.files, key)
	return nil
}

type fakePredictor struct {
	amount int
}

func (p *fakePredictor) PredictProcessingTime(_ context.Context, _ string, amount int) (time.Duration, error) {
	p.amount = amount
	return 90 * time.Second, nil
}

func newTestApp(t *testing.T) *mid.App {
	t.Helper()
	lex := lexicon.Default()
	lex.Names = []string{"王小明", "小明", "李四", "张三"}
	lex.Places = []string{"青云山", "落霞镇"}
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{Lexicon: lex, Tokenizer: text.NewLexiconTokenizer(lex)})
	if err != nil {
		t.Fatalf("failed to create graph client: %v", err)
	}
	return &mid.App{Store: memory.NewAnalysisStorage(), Graph: client}
}

func do(e *echo.Echo, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func analyzeSample(t *testing.T, e *echo.Echo) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"id": "novel-1", "text": sampleText})
	rec := do(e, http.MethodPost, "/api/novels/analyze", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("analyze returned %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	e := NewServer(newTestApp(t))
	rec := do(e, http.MethodGet, "/health", nil, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeAndQuery(t *testing.T) {
	e := NewServer(newTestApp(t))
	analyzeSample(t, e)

	var list struct {
		Count  int `json:"count"`
		Novels []struct {
			NovelID string `json:"novel_id"`
			Title   string `json:"title"`
		} `json:"novels"`
	}
	rec := do(e, http.MethodGet, "/api/novels", nil, nil)
	decode(t, rec, &list)
	if list.Count != 1 || list.Novels[0].NovelID != "novel-1" || list.Novels[0].Title != "青云志" {
		t.Fatalf("unexpected list %+v", list)
	}

	var profile struct {
		Profile struct {
			Character struct {
				Name string `json:"name"`
			} `json:"character"`
			IsMain bool `json:"is_main"`
		} `json:"profile"`
		Timeline []json.RawMessage `json:"timeline"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/characters/"+url.PathEscape("小明"), nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("character returned %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &profile)
	if profile.Profile.Character.Name != "王小明" || len(profile.Timeline) == 0 {
		t.Errorf("unexpected profile %+v", profile)
	}

	var network struct {
		Nodes []struct {
			ID string `json:"id"`
		} `json:"nodes"`
		Edges []struct {
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"edges"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/graph", nil, nil)
	decode(t, rec, &network)
	if len(network.Nodes) != 3 || len(network.Edges) == 0 {
		t.Errorf("unexpected graph %+v", network)
	}

	var chapter struct {
		Chapter int `json:"chapter"`
		Events  []struct {
			ID      string `json:"id"`
			Chapter int    `json:"chapter"`
		} `json:"events"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/timeline?chapter=2", nil, nil)
	decode(t, rec, &chapter)
	if chapter.Chapter != 2 || len(chapter.Events) == 0 {
		t.Fatalf("unexpected chapter timeline %+v", chapter)
	}
	for _, ev := range chapter.Events {
		if ev.Chapter != 2 {
			t.Errorf("event %s belongs to chapter %d", ev.ID, ev.Chapter)
		}
	}

	rec = do(e, http.MethodGet, "/api/novels/novel-1/timeline/events/"+chapter.Events[0].ID+"?size=1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("event context returned %d: %s", rec.Code, rec.Body.String())
	}

	var alone struct {
		Target struct {
			ID string `json:"id"`
		} `json:"target_event"`
		Previous  []json.RawMessage `json:"previous_events"`
		Following []json.RawMessage `json:"following_events"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/timeline/events/"+chapter.Events[0].ID+"?size=0", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("event context with size 0 returned %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &alone)
	if alone.Target.ID != chapter.Events[0].ID || len(alone.Previous) != 0 || len(alone.Following) != 0 {
		t.Errorf("expected the event alone for size 0, got %s", rec.Body.String())
	}

	rec = do(e, http.MethodGet, "/api/novels/novel-1/locations/"+url.PathEscape("落霞镇"), nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("location returned %d: %s", rec.Code, rec.Body.String())
	}

	var emotions struct {
		Summary graph.EmotionSummary `json:"summary"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/emotions", nil, nil)
	decode(t, rec, &emotions)
	if emotions.Summary.EmotionDistribution == nil {
		t.Errorf("expected emotion distribution, got %s", rec.Body.String())
	}

	var states struct {
		Character string            `json:"character"`
		States    []json.RawMessage `json:"states"`
	}
	rec = do(e, http.MethodGet, "/api/novels/novel-1/states?character="+url.QueryEscape("张三"), nil, nil)
	decode(t, rec, &states)
	if states.Character != "张三" || len(states.States) == 0 {
		t.Errorf("unexpected states %s", rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	e := NewServer(newTestApp(t))
	analyzeSample(t, e)

	tests := []struct {
		name   string
		method string
		target string
	}{
		{"novel", http.MethodGet, "/api/novels/missing"},
		{"characters", http.MethodGet, "/api/novels/missing/characters"},
		{"character", http.MethodGet, "/api/novels/novel-1/characters/" + url.PathEscape("无名")},
		{"event", http.MethodGet, "/api/novels/novel-1/timeline/events/event_9999"},
		{"location", http.MethodGet, "/api/novels/novel-1/locations/" + url.PathEscape("虚空")},
		{"delete", http.MethodDelete, "/api/novels/missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, nil, nil)
			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBadRequests(t *testing.T) {
	e := NewServer(newTestApp(t))
	analyzeSample(t, e)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"empty body", http.MethodPost, "/api/novels/analyze", `{}`},
		{"broken json", http.MethodPost, "/api/novels/analyze", `{`},
		{"invalid chapters", http.MethodPost, "/api/novels/analyze", `{"id":"x","chapters":[{"number":0,"title":"t","content":"c","paragraphs":["c"]}]}`},
		{"chapter param", http.MethodGet, "/api/novels/novel-1/timeline?chapter=abc", ""},
		{"size param", http.MethodGet, "/api/novels/novel-1/timeline/events/event_0001?size=-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			if tt.body != "" {
				body = []byte(tt.body)
			}
			rec := do(e, tt.method, tt.target, body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestDeleteNovel(t *testing.T) {
	e := NewServer(newTestApp(t))
	analyzeSample(t, e)

	if rec := do(e, http.MethodDelete, "/api/novels/novel-1", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}
	if rec := do(e, http.MethodGet, "/api/novels/novel-1", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAuth(t *testing.T) {
	app := newTestApp(t)
	app.APIKey = "admin-key"
	app.ReadAPIKey = "read-key"
	e := NewServer(app)

	tests := []struct {
		name    string
		method  string
		target  string
		headers map[string]string
		want    int
	}{
		{"no key", http.MethodGet, "/api/novels", nil, http.StatusUnauthorized},
		{"wrong key", http.MethodGet, "/api/novels", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"read key lists", http.MethodGet, "/api/novels", map[string]string{"X-API-Key": "read-key"}, http.StatusOK},
		{"read key cannot delete", http.MethodDelete, "/api/novels/x", map[string]string{"X-API-Key": "read-key"}, http.StatusForbidden},
		{"bearer admin deletes", http.MethodDelete, "/api/novels/x", map[string]string{"Authorization": "Bearer admin-key"}, http.StatusNotFound},
		{"health stays open", http.MethodGet, "/health", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.method, tt.target, nil, tt.headers)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func uploadRequest(t *testing.T, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", "青云志"); err != nil {
		t.Fatal(err)
	}
	part, err := w.CreateFormFile("file", "qingyun.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/novels", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestUploadNovel(t *testing.T) {
	app := newTestApp(t)
	pub := &fakePublisher{}
	objects := &fakeObjects{files: make(map[string][]byte)}
	predictor := &fakePredictor{}
	app.Queue = pub
	app.Objects = objects
	app.Timings = predictor
	e := NewServer(app)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, sampleText))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		NovelID   string `json:"novel_id"`
		ObjectKey string `json:"object_key"`
		Estimate  string `json:"estimated_duration"`
	}
	decode(t, rec, &resp)
	if resp.Estimate != "00:01:30" || predictor.amount != utf8.RuneCountInString(sampleText) {
		t.Errorf("unexpected estimate %q for %d runes", resp.Estimate, predictor.amount)
	}
	if string(objects.files[resp.ObjectKey]) != sampleText {
		t.Errorf("upload was not stored under %s", resp.ObjectKey)
	}
	if len(pub.keys) != 1 || pub.keys[0] != queue.AnalyzeQueue {
		t.Fatalf("expected one analyze message, got %v", pub.keys)
	}
	msg, err := queue.ParseAnalyzeMessage(pub.bodies[0])
	if err != nil {
		t.Fatal(err)
	}
	if msg.NovelID != resp.NovelID || msg.ObjectKey != resp.ObjectKey || msg.Title != "青云志" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestUploadNovelPublishFails(t *testing.T) {
	app := newTestApp(t)
	objects := &fakeObjects{files: make(map[string][]byte)}
	app.Queue = &fakePublisher{err: errors.New("broker down")}
	app.Objects = objects
	e := NewServer(app)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, sampleText))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(objects.files) != 0 || len(objects.deleted) != 1 {
		t.Errorf("expected upload to be cleaned up, files %v deleted %v", objects.files, objects.deleted)
	}
}

func TestUploadWithoutQueue(t *testing.T) {
	e := NewServer(newTestApp(t))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, sampleText))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not configured") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
