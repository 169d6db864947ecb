package fakebackend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Identity is what /validate_identifier returns for one identifier.
type Identity struct {
	Type             string   `json:"type"`
	CustomerNumber   string   `json:"customer_number"`
	MultipleInvoices bool     `json:"multiple_invoices"`
	InvoiceNumbers   []string `json:"invoice_numbers"`
	CustomerName     string   `json:"customer_name"`
	Salutation       string   `json:"salutation"`
	DateOfBirth      string   `json:"date_of_birth"`
	CustomerGreeting string   `json:"customer_greeting"`
}

// ChatFunc answers a decoded /chat request body.
type ChatFunc func(req map[string]any) map[string]any

// FakeBackend is an httptest server imitating the KlarBill backend.
type FakeBackend struct {
	Server *httptest.Server

	lock       sync.Mutex
	identities map[string]Identity
	greetings  map[string]string // customer or invoice number -> greeting
	chat       ChatFunc
	calls      map[string]int
	bodies     map[string][]map[string]any
	failPaths  map[string]int // path -> status code to return
	logged     chan map[string]any
}

func New() *FakeBackend {
	f := &FakeBackend{
		identities: make(map[string]Identity),
		greetings:  make(map[string]string),
		calls:      make(map[string]int),
		bodies:     make(map[string][]map[string]any),
		failPaths:  make(map[string]int),
		logged:     make(chan map[string]any, 128),
		chat: func(req map[string]any) map[string]any {
			return map[string]any{"response": "echo: " + asString(req["message"])}
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /validate_identifier", f.handle("/validate_identifier", f.validate))
	mux.HandleFunc("POST /customer_name", f.handle("/customer_name", f.customerName))
	mux.HandleFunc("POST /chat", f.handle("/chat", f.chatHandler))
	mux.HandleFunc("POST /log_message", f.handle("/log_message", f.logMessage))
	mux.HandleFunc("GET /health", f.handle("/health", func(map[string]any) any {
		return map[string]any{"status": "healthy", "version": "2.0.0"}
	}))
	f.Server = httptest.NewServer(mux)
	return f
}

func (f *FakeBackend) URL() string {
	return f.Server.URL
}

func (f *FakeBackend) Close() {
	f.Server.Close()
}

// AddIdentity registers a valid identifier.
func (f *FakeBackend) AddIdentity(identifier string, id Identity) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.identities[identifier] = id
}

// AddGreeting registers the /customer_name answer for a customer or invoice number.
func (f *FakeBackend) AddGreeting(number, greeting string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.greetings[number] = greeting
}

func (f *FakeBackend) SetChat(fn ChatFunc) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.chat = fn
}

// Fail makes path answer with status until cleared with status 0.
func (f *FakeBackend) Fail(path string, status int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if status == 0 {
		delete(f.failPaths, path)
		return
	}
	f.failPaths[path] = status
}

// Calls reports how many requests path received.
func (f *FakeBackend) Calls(path string) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls[path]
}

// Bodies returns the decoded request bodies path received.
func (f *FakeBackend) Bodies(path string) []map[string]any {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]map[string]any(nil), f.bodies[path]...)
}

// Logged delivers every /log_message body as it arrives.
func (f *FakeBackend) Logged() <-chan map[string]any {
	return f.logged
}

func (f *FakeBackend) handle(path string, fn func(map[string]any) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if r.Method == http.MethodPost {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}

		f.lock.Lock()
		f.calls[path]++
		f.bodies[path] = append(f.bodies[path], body)
		status := f.failPaths[path]
		f.lock.Unlock()

		if status != 0 {
			http.Error(w, "forced failure", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fn(body))
	}
}

func (f *FakeBackend) validate(body map[string]any) any {
	f.lock.Lock()
	id, ok := f.identities[asString(body["identifier"])]
	f.lock.Unlock()
	if !ok {
		return map[string]any{"valid": false}
	}
	return struct {
		Valid bool `json:"valid"`
		Identity
	}{Valid: true, Identity: id}
}

func (f *FakeBackend) customerName(body map[string]any) any {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, key := range []string{"invoice_number", "customer_number"} {
		if g, ok := f.greetings[asString(body[key])]; ok {
			return map[string]any{"customer_greeting": g, "type": key[:len(key)-len("_number")]}
		}
	}
	return map[string]any{"customer_greeting": "", "type": ""}
}

func (f *FakeBackend) chatHandler(body map[string]any) any {
	f.lock.Lock()
	fn := f.chat
	f.lock.Unlock()
	return fn(body)
}

func (f *FakeBackend) logMessage(body map[string]any) any {
	select {
	case f.logged <- body:
	default:
	}
	return map[string]any{"status": "success", "logged": true}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
