package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/config"
	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/signpanel/internal/client/services"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
)

// ------------ helpers ------------

type toastRec struct {
	mu     sync.Mutex
	toasts []services.Toast
}

func (r *toastRec) Notify(t services.Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

func (r *toastRec) all() []services.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]services.Toast(nil), r.toasts...)
}

func (r *toastRec) last() services.Toast {
	all := r.all()
	if len(all) == 0 {
		return services.Toast{}
	}
	return all[len(all)-1]
}

type backend struct {
	mu    sync.Mutex
	calls []string
}

func (b *backend) record(r *http.Request) {
	b.mu.Lock()
	b.calls = append(b.calls, r.Method+" "+r.URL.Path)
	b.mu.Unlock()
}

func (b *backend) seen() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	app     *App
	out     *bytes.Buffer
	toasts  *toastRec
	backend *backend
	store   *storage.Store
}

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	repo, err := metadata.Open(context.Background(), metadata.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	store := storage.New(repo, nil)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// newHarness builds a token-mode plugin console for user "ou_1" of tenant
// "t_1" against a fake backend serving h.
func newHarness(t *testing.T, h http.HandlerFunc, input string) *harness {
	t.Helper()
	ctx := context.Background()

	b := &backend{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.record(r)
		if h == nil {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	store := newStore(t)
	tokens, err := services.NewTokenAuth(ctx, store, nil)
	require.NoError(t, err)

	api := client.New(client.Options{BaseURL: srv.URL, Credentials: tokens, Retry: client.NoRetry})
	toasts := &toastRec{}
	state := &services.State{
		Store:      store,
		Client:     api,
		Notifier:   toasts,
		Authorizer: tokens,
		Quota:      services.NewQuotaHolder(api, nil),
		ShareForm:  services.NewShareForm(api, tokens, nil, "https://share.example", nil),
	}

	cfg := &config.Config{
		AuthMode: config.AuthToken,
		Identity: config.IdentityConfig{OpenID: "ou_1", TenantKey: "t_1"},
	}
	out := &bytes.Buffer{}
	app := newApp(cfg, state, parts{tokens: tokens}, Options{In: strings.NewReader(input), Out: out})
	return &harness{app: app, out: out, toasts: toasts, backend: b, store: store}
}

func (h *harness) exec(line string) {
	h.app.shell.Exec(context.Background(), line)
}

var tableFields = []map[string]any{
	{"field_id": "fld1", "label": "Name", "input_type": "text"},
	{"field_id": "fld2", "label": "Signature", "input_type": "attachment"},
	{"field_id": "fld3", "label": "Date", "input_type": "date"},
}

func fieldsHandler(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Path == "/api/form/table-fields" {
		writeJSON(w, map[string]any{"success": true, "fields": tableFields})
		return true
	}
	return false
}

// ------------ tests ------------

func TestBuildState_SelectsAuthVariant(t *testing.T) {
	tests := []struct {
		mode      string
		wantPopup bool
		wantJWT   bool
	}{
		{mode: "", wantPopup: true},
		{mode: config.AuthPopup, wantPopup: true},
		{mode: config.AuthToken},
		{mode: config.AuthJWT, wantJWT: true},
	}
	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			cfg := &config.Config{APIBase: "http://127.0.0.1:1", AuthMode: tt.mode}
			state, p, err := buildState(context.Background(), cfg, newStore(t), &bytes.Buffer{}, nil)
			require.NoError(t, err)

			require.NotNil(t, p.tokens)
			assert.Equal(t, tt.wantPopup, p.popup != nil)
			assert.Equal(t, tt.wantJWT, p.jwt != nil)
			assert.Equal(t, tt.wantPopup, state.Callback != nil)
			require.NotNil(t, state.Authorizer)
			assert.False(t, state.Authorizer.Authorized())
			assert.NotNil(t, state.Quota)
			assert.NotNil(t, state.ShareForm)

			if tt.mode == config.AuthToken {
				assert.Same(t, p.tokens, state.Authorizer)
			}
		})
	}
}

func TestBuildState_UnknownMode(t *testing.T) {
	cfg := &config.Config{APIBase: "http://127.0.0.1:1", AuthMode: "ldap"}
	_, _, err := buildState(context.Background(), cfg, newStore(t), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ldap")
}

func TestQuota_ShowsSnapshotAndUpdatesPrompt(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ou_1", r.URL.Query().Get("open_id"))
		writeJSON(w, map[string]any{"remaining": 7, "plan_quota": 50, "total_used": 43})
	}, "")

	h.exec("quota")

	out := h.out.String()
	assert.Contains(t, out, "remaining")
	assert.Contains(t, out, "43")
	assert.Contains(t, h.app.prompt(), "7 left")
	assert.Equal(t, []string{"GET /api/quota/status"}, h.backend.seen())
}

func TestQuota_FetchErrorReportedOnlyByCommand(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota service down"}`, http.StatusBadGateway)
	}, "")
	before := h.app.state.Quota.Snapshot()

	h.app.reloadQuota(context.Background())
	assert.Empty(t, h.toasts.all())
	assert.Equal(t, before, h.app.state.Quota.Snapshot())

	h.exec("quota")
	assert.Equal(t, services.ToastError, h.toasts.last().Kind)
	assert.Contains(t, h.toasts.last().Message, "loading quota failed")
	assert.Equal(t, before, h.app.state.Quota.Snapshot())
	assert.Len(t, h.backend.seen(), 2)
}

func TestInvite_RedeemsAndReloadsQuota(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/invite/validate":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "WELCOME", body["code"])
			writeJSON(w, map[string]any{"valid": true, "benefit_days": 30})
		case "/api/invite/redeem":
			writeJSON(w, map[string]any{"success": true, "benefit_days": 30, "invite_expire_at": 1893456000})
		case "/api/quota/status":
			writeJSON(w, map[string]any{"remaining": 0, "invite_active": true})
		default:
			http.NotFound(w, r)
		}
	}, "")

	h.exec("invite welcome")

	assert.Equal(t, []string{
		"POST /api/invite/validate",
		"POST /api/invite/redeem",
		"GET /api/quota/status",
	}, h.backend.seen())
	assert.Equal(t, services.ToastSuccess, h.toasts.last().Kind)
	assert.True(t, h.app.state.Quota.CanSign())
}

func TestInvite_InvalidCodeIsNotRedeemed(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"valid": false, "reason": "expired"})
	}, "")

	h.exec("invite OLD")

	assert.Equal(t, []string{"POST /api/invite/validate"}, h.backend.seen())
	last := h.toasts.last()
	assert.Equal(t, services.ToastWarning, last.Kind)
	assert.Contains(t, last.Message, "expired")
}

func TestInvite_RequiresIdentity(t *testing.T) {
	h := newHarness(t, nil, "")
	h.app.identity.OpenID = ""

	h.exec("invite WELCOME")

	assert.Empty(t, h.backend.seen())
	assert.Equal(t, services.ToastWarning, h.toasts.last().Kind)
}

func TestBuy_UnknownPayTypeIsUsage(t *testing.T) {
	h := newHarness(t, nil, "")

	h.exec("buy -alipay card basic")

	assert.Contains(t, h.out.String(), "Usage: buy")
	assert.Empty(t, h.backend.seen())
}

func TestBuy_CreatesOrder(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "basic", body["plan_id"])
		writeJSON(w, map[string]any{"success": true, "order_id": "o-1", "amount": 990, "quota_count": 100, "plan_name": "Basic"})
	}, "")

	h.exec("buy basic")

	assert.Equal(t, []string{"POST /api/payment/create"}, h.backend.seen())
	out := h.out.String()
	assert.Contains(t, out, "o-1")
	assert.Contains(t, out, "¥9.90")
}

func TestOrder_PaidReloadsQuota(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payment/status/o-1":
			writeJSON(w, map[string]any{"found": true, "order_id": "o-1", "status": "paid", "quota_count": 100})
		case "/api/quota/status":
			writeJSON(w, map[string]any{"remaining": 120})
		default:
			http.NotFound(w, r)
		}
	}, "")

	h.exec("order o-1")

	assert.Equal(t, []string{"GET /api/payment/status/o-1", "GET /api/quota/status"}, h.backend.seen())
	assert.Equal(t, 120, h.app.state.Quota.Snapshot().Remaining)
	assert.Equal(t, services.ToastSuccess, h.toasts.last().Kind)
}

func TestOrder_PendingDoesNotReload(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "order_id": "o-2", "status": "pending"})
	}, "")

	h.exec("order -alipay o-2")

	assert.Equal(t, []string{"GET /api/payment/alipay/query"}, h.backend.seen())
	assert.Contains(t, h.out.String(), "pending")
}

func TestTable_LoadsFields(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if !fieldsHandler(w, r) {
			http.NotFound(w, r)
		}
	}, "")

	h.exec("table app1 tbl1")

	assert.Contains(t, h.out.String(), "3 fields loaded")
	appID, tableID := h.app.table()
	assert.Equal(t, "app1", appID)
	assert.Equal(t, "tbl1", tableID)
	assert.Equal(t, "app1", h.app.tokens.CurrentAppToken())
	assert.Contains(t, h.app.prompt(), "tbl1")
}

func TestToken_SetPromptsAndAuthorizes(t *testing.T) {
	h := newHarness(t, nil, "secret-token\n")
	h.app.setTable("app1", "tbl1")

	h.exec("token set")

	assert.Equal(t, "secret-token", h.app.tokens.BaseToken("app1"))
	assert.True(t, h.app.authorized())

	saved, err := h.store.TokenMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app1": "secret-token"}, saved)
}

func TestToken_ListMasks(t *testing.T) {
	h := newHarness(t, nil, "")
	require.NoError(t, h.app.tokens.SetBaseToken(context.Background(), "app1", "abcd1234efgh", nil))

	h.exec("token list")

	out := h.out.String()
	assert.Contains(t, out, "abcd****efgh")
	assert.NotContains(t, out, "abcd1234efgh")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd**wxyz", maskToken("abcdefwxyz"))
}

func TestCreate_WarnsForEveryMissingPrecondition(t *testing.T) {
	h := newHarness(t, nil, "")

	h.exec("create")

	toasts := h.toasts.all()
	require.Len(t, toasts, 3)
	for _, toast := range toasts {
		assert.Equal(t, services.ToastWarning, toast.Kind)
	}
	assert.Empty(t, h.backend.seen())
}

func TestCreate_PrintsAllWarningsBeforeReturning(t *testing.T) {
	h := newHarness(t, nil, "")
	h.app.state.Notifier = services.NewToastQueue(services.ColorRenderer{W: h.out})

	h.exec("create")

	out := h.out.String()
	assert.Contains(t, out, "[warning] please enter a form name")
	assert.Contains(t, out, "[warning] select at least one field")
	assert.Contains(t, out, `[warning] authorize first with the "auth" command`)
	assert.Empty(t, h.backend.seen())
}

func TestSelect_NeedsBasicInfoFirst(t *testing.T) {
	h := newHarness(t, nil, "")

	h.exec("select 1")

	assert.Equal(t, services.ToastWarning, h.toasts.last().Kind)
	assert.Empty(t, h.app.state.ShareForm.SelectedFields())
}

func TestShareFormFlow(t *testing.T) {
	var created map[string]any
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if fieldsHandler(w, r) {
			return
		}
		if r.URL.Path == "/api/form/create" {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			writeJSON(w, map[string]any{"success": true, "form_id": "f-9", "has_auth": true})
			return
		}
		http.NotFound(w, r)
	}, "")
	require.NoError(t, h.app.tokens.SetBaseToken(context.Background(), "app1", "bt-1", nil))

	h.exec("table app1 tbl1")
	h.exec(`name "Delivery receipt"`)
	h.exec("desc Please sign")
	h.exec("next")
	h.exec("select 1 fld2")
	h.exec("required 2")
	h.exec("show-data on")
	h.exec("create")

	require.NotNil(t, created)
	assert.Equal(t, "Delivery receipt", created["name"])
	assert.Equal(t, "Please sign", created["description"])
	assert.Equal(t, "tbl1", created["table_id"])
	assert.Equal(t, "ou_1", created["created_by"])
	assert.Equal(t, "fld2", created["signature_field_id"])
	assert.Equal(t, true, created["show_data"])
	fields, ok := created["fields"].([]any)
	require.True(t, ok)
	assert.Len(t, fields, 2)

	form := h.app.state.ShareForm
	assert.Equal(t, "https://share.example/sign?id=f-9", form.ShareURL())
	assert.Equal(t, "Delivery receipt", form.Name())
	assert.Empty(t, form.SelectedFields())
	assert.Equal(t, services.StepBasicInfo, form.Step())
	assert.Contains(t, h.out.String(), "https://share.example/sign?id=f-9")
}

func TestRequired_UnselectedFieldWarns(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if !fieldsHandler(w, r) {
			http.NotFound(w, r)
		}
	}, "")
	h.exec("table app1 tbl1")

	h.exec("required fld1")

	assert.Equal(t, services.ToastWarning, h.toasts.last().Kind)
}

func TestRecords_BoundedByRecordCount(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "count": 3})
	}, "")
	h.app.setTable("app1", "tbl1")

	h.exec("records 5")
	assert.Equal(t, 1, h.app.state.ShareForm.RecordIndex())
	assert.Contains(t, h.toasts.last().Message, "only 3 records")

	h.exec("records 2")
	assert.Equal(t, 2, h.app.state.ShareForm.RecordIndex())
}

func TestRecords_RejectsNonPositive(t *testing.T) {
	h := newHarness(t, nil, "")

	h.exec("records 0")
	h.exec("records x")

	assert.Equal(t, 2, strings.Count(h.out.String(), "Usage: records"))
	assert.Equal(t, 1, h.app.state.ShareForm.RecordIndex())
}

func TestReset_KeepsLoadedFields(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if !fieldsHandler(w, r) {
			http.NotFound(w, r)
		}
	}, "")
	h.exec("table app1 tbl1")
	h.exec("name Draft")

	h.exec("reset")

	assert.Empty(t, h.app.state.ShareForm.Name())
	assert.Len(t, h.app.state.ShareForm.AvailableFields(), 3)
}

func stubReadFile(t *testing.T, files map[string][]byte) {
	t.Helper()
	prev := readFile
	readFile = func(name string) ([]byte, error) {
		if b, ok := files[name]; ok {
			return b, nil
		}
		return nil, os.ErrNotExist
	}
	t.Cleanup(func() { readFile = prev })
}

func TestSign_UploadsAndConsumesQuota(t *testing.T) {
	stubReadFile(t, map[string][]byte{"/tmp/sig.png": []byte("png-bytes")})

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/quota/check":
			writeJSON(w, map[string]any{"can_sign": true, "consume_quota": true})
		case "/api/sign/upload":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "fold-1", r.FormValue("folder_token"))
			assert.Equal(t, "sig.png", r.FormValue("file_name"))
			assert.Equal(t, "0", r.FormValue("has_quota"))
			writeJSON(w, map[string]any{"success": true, "file_token": "ft-1"})
		case "/api/quota/consume":
			assert.Equal(t, "ft-1", r.URL.Query().Get("file_token"))
			writeJSON(w, map[string]any{"success": true})
		case "/api/quota/status":
			writeJSON(w, map[string]any{"remaining": 19})
		default:
			http.NotFound(w, r)
		}
	}, "")

	h.exec("sign /tmp/sig.png fold-1")

	assert.Equal(t, []string{
		"GET /api/quota/check",
		"POST /api/sign/upload",
		"POST /api/quota/consume",
		"GET /api/quota/status",
	}, h.backend.seen())
	assert.Equal(t, "Sign", h.app.currentRoute().Name)
	assert.Equal(t, services.ToastSuccess, h.toasts.last().Kind)
	assert.Contains(t, h.out.String(), "ft-1")
}

func TestSign_RefusedWhenQuotaExhausted(t *testing.T) {
	stubReadFile(t, map[string][]byte{"sig.png": []byte("png")})

	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"can_sign": false, "reason": "quota used up"})
	}, "")

	h.exec("sign sig.png fold-1")

	assert.Equal(t, []string{"GET /api/quota/check"}, h.backend.seen())
	last := h.toasts.last()
	assert.Equal(t, services.ToastWarning, last.Kind)
	assert.Equal(t, "quota used up", last.Message)
}

func TestSign_MissingFile(t *testing.T) {
	stubReadFile(t, nil)
	h := newHarness(t, nil, "")

	h.exec("sign nope.png fold-1")

	assert.Contains(t, h.out.String(), "error:")
	assert.Empty(t, h.backend.seen())
}

func TestForms_ListAndClear(t *testing.T) {
	deleted := 0
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/form/list":
			assert.Equal(t, "ou_1", r.URL.Query().Get("created_by"))
			writeJSON(w, map[string]any{"forms": []map[string]any{
				{"form_id": "f-1", "name": "Receipt", "submit_count": 4},
				{"form_id": "f-2", "name": "Handover", "submit_count": 0},
			}})
		case r.Method == http.MethodDelete:
			deleted++
			writeJSON(w, map[string]any{"success": true})
		default:
			http.NotFound(w, r)
		}
	}, "y\n")

	h.exec("forms")
	assert.Contains(t, h.out.String(), "Handover")

	h.exec("forms-clear")
	assert.Equal(t, 2, deleted)
	assert.Equal(t, "2 forms deleted", h.toasts.last().Message)
}

func TestFormDelete_Declined(t *testing.T) {
	h := newHarness(t, nil, "n\n")

	h.exec("form-delete f-1")

	assert.Empty(t, h.backend.seen())
}

func TestFormData_SortedFields(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"zeta": "last", "alpha": "first"})
	}, "")

	h.exec("form-data f-1")

	out := h.out.String()
	require.Contains(t, out, "alpha")
	require.Contains(t, out, "zeta")
	assert.Less(t, strings.Index(out, "alpha"), strings.Index(out, "zeta"))
}

func TestMarkdown(t *testing.T) {
	stubReadFile(t, map[string][]byte{
		"desc.html": []byte("<p><strong>Sign</strong> here</p>"),
		"desc.md":   []byte("**bold**"),
	})
	h := newHarness(t, nil, "")

	h.exec("md desc.html")
	assert.Contains(t, h.out.String(), "**Sign** here")

	h.out.Reset()
	h.exec("md -preview desc.md")
	assert.Contains(t, h.out.String(), "<strong>bold</strong>")
}

func TestRun_ExitsAndClosesState(t *testing.T) {
	h := newHarness(t, nil, "help\nexit\n")

	err := h.app.Run(context.Background())
	require.NoError(t, err)

	out := h.out.String()
	assert.Contains(t, out, "Signature plugin console")
	assert.Contains(t, out, "Bye!")
}
