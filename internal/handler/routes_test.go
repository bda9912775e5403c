package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/gethub-app/gethub/internal/flows"
	"github.com/gethub-app/gethub/internal/llm"
	"github.com/gethub-app/gethub/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"email":"asha@example.com","displayName":"Asha","password":"password123"}`), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}
	user := decodeBody[model.User](t, w)
	if user.Role != model.UserRoleStudent {
		t.Errorf("role = %q, want student", user.Role)
	}
	if strings.Contains(w.Body.String(), "passwordHash") {
		t.Error("response leaks password hash")
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != sessionCookieName {
		t.Fatal("register did not set session cookie")
	}

	w = env.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"Asha@Example.com","password":"password123"}`), nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"asha@example.com","password":"wrong"}`), nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","password":"password123"}`},
		{"short password", `{"email":"a@example.com","password":"short"}`},
		{"not json", `nope`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/register", strings.NewReader(tt.body), nil, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/attempts", nil, nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without cookie = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/attempts", nil,
		&http.Cookie{Name: sessionCookieName, Value: "bogus"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with bad cookie = %d, want 401", w.Code)
	}

	cookie, _ := env.login(t, model.UserRoleStudent)
	w = env.do(t, http.MethodGet, "/api/attempts", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Errorf("status with cookie = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	env := newTestEnv(t)
	student, _ := env.login(t, model.UserRoleStudent)
	admin, _ := env.login(t, model.UserRoleAdmin)

	w := env.do(t, http.MethodGet, "/api/admin/users", nil, student, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("student status = %d, want 403", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/admin/users", nil, admin, nil)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestGenerateExam(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.store.seen = []string{"Old question?"}
	env.provider.AddResponse(llm.MockResponse{Content: json.RawMessage(`{
		"questions": [
			{"questionId": "q1", "questionType": "trueFalse", "questionText": "New question?", "correctAnswer": "True", "pointsPossible": 10}
		]
	}`)})

	w := env.do(t, http.MethodPost, "/api/exams/generate",
		strings.NewReader(`{"examId":"upsc-cse","numQuestions":1}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	out := decodeBody[generateExamResponse](t, w)
	if len(out.Questions) != 1 {
		t.Fatalf("questions = %d, want 1", len(out.Questions))
	}
	if out.Questions[0].Topic == "" {
		t.Error("generated question missing topic")
	}
	if out.Message != "1 question available." {
		t.Errorf("message = %q, want localized singular count", out.Message)
	}

	prompt := env.provider.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "Old question?") {
		t.Error("prompt does not exclude seen questions")
	}
	if !strings.Contains(prompt, "UPSC Civil Services Examination") {
		t.Error("prompt does not use the catalog exam name as topic")
	}
}

func TestGenerateExamTopicOnlyExcludesSeen(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.store.seen = []string{"Old question?"}
	env.provider.AddResponse(llm.MockResponse{Content: json.RawMessage(`{
		"questions": [
			{"questionId": "q1", "questionType": "trueFalse", "questionText": "New question?", "correctAnswer": "True", "pointsPossible": 10}
		]
	}`)})

	w := env.do(t, http.MethodPost, "/api/exams/generate",
		strings.NewReader(`{"topic":"Indian Polity","numQuestions":1}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	// Topic-only practice still draws on the user's full history.
	prompt := env.provider.Calls[0].Messages[0].Content
	if !strings.Contains(prompt, "Old question?") {
		t.Error("prompt does not exclude seen questions without an examId")
	}
}

func TestGenerateExamValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	w := env.do(t, http.MethodPost, "/api/exams/generate",
		strings.NewReader(`{"topic":"Algebra","numQuestions":0}`), cookie, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestSubmitAttempt(t *testing.T) {
	env := newTestEnv(t)
	cookie, userID := env.login(t, model.UserRoleStudent)

	env.grader.attempt = &model.ExamAttempt{
		ID: "a1", UserID: userID,
		AIGradingState: model.AIGradingState{TotalPointsAwarded: 10, TotalPointsPossible: 30},
	}

	body := `{"examId":"upsc-cse","examName":"UPSC Practice","questions":[
		{"questionId":"q1","questionType":"multipleChoice","questionText":"?","correctAnswer":"Paris","studentAnswer":"Paris","pointsPossible":10}
	]}`
	w := env.do(t, http.MethodPost, "/api/attempts", strings.NewReader(body), cookie,
		map[string]string{"Idempotency-Key": "key-42"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	if env.grader.lastKey != "key-42" {
		t.Errorf("idempotency key = %q, want key-42", env.grader.lastKey)
	}
	if env.grader.lastExam.Student.ID != userID {
		t.Errorf("student id = %q, want %q", env.grader.lastExam.Student.ID, userID)
	}

	out := decodeBody[attemptResponse](t, w)
	if out.ScoreSummary != "You scored 10 out of 30 points." {
		t.Errorf("scoreSummary = %q, want localized score line", out.ScoreSummary)
	}
}

func TestSubmitAttemptRateLimited(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.grader.err = &flows.GenerationError{Op: "flag answer", Err: &llm.ErrRateLimit{}}

	body := `{"examName":"X","questions":[{"questionId":"q1","questionType":"trueFalse","questionText":"?","correctAnswer":"True","pointsPossible":10}]}`
	w := env.do(t, http.MethodPost, "/api/attempts", strings.NewReader(body), cookie, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429: %s", w.Code, w.Body.String())
	}
}

func TestGetAttemptScoping(t *testing.T) {
	env := newTestEnv(t)
	cookie, userID := env.login(t, model.UserRoleStudent)
	other, _ := env.login(t, model.UserRoleStudent)

	env.store.attempts = append(env.store.attempts, &model.ExamAttempt{ID: "a1", UserID: userID})

	w := env.do(t, http.MethodGet, "/api/attempts/a1", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Errorf("owner status = %d, want 200", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/attempts/a1", nil, other, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("other user status = %d, want 404", w.Code)
	}
}

func TestProgressMerge(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	w := env.do(t, http.MethodPatch, "/api/syllabus/upsc-cse/progress",
		strings.NewReader(`{"topicStatus":{"P1-t1":"Pending"}}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first patch status = %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodPatch, "/api/syllabus/upsc-cse/progress",
		strings.NewReader(`{"topicStatus":{"P1-t2":"Completed"}}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second patch status = %d: %s", w.Code, w.Body.String())
	}

	out := decodeBody[progressResponse](t, w)
	if out.TopicStatus["P1-t1"] != model.TopicPending {
		t.Errorf("P1-t1 = %q, want Pending (merge lost earlier key)", out.TopicStatus["P1-t1"])
	}
	if out.TopicStatus["P1-t2"] != model.TopicCompleted {
		t.Errorf("P1-t2 = %q, want Completed", out.TopicStatus["P1-t2"])
	}
}

func TestAllProgress(t *testing.T) {
	env := newTestEnv(t)
	cookie, userID := env.login(t, model.UserRoleStudent)

	env.store.progress[userID+"/upsc-cse"] = map[string]model.TopicStatus{"P1-t1": model.TopicCompleted}
	env.store.progress[userID+"/gate-cs"] = map[string]model.TopicStatus{"P1-t2": model.TopicRevision}
	env.store.progress[userID+"/retired-exam"] = map[string]model.TopicStatus{"P1-t1": model.TopicPending}

	w := env.do(t, http.MethodGet, "/api/syllabus/progress", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	out := decodeBody[[]progressResponse](t, w)
	if len(out) != 2 {
		t.Fatalf("got %d progress entries, want 2 (unknown exam skipped): %+v", len(out), out)
	}
	byExam := make(map[string]progressResponse, len(out))
	for _, p := range out {
		byExam[p.ExamID] = p
	}
	if byExam["upsc-cse"].TopicStatus["P1-t1"] != model.TopicCompleted {
		t.Errorf("upsc-cse P1-t1 = %q, want Completed", byExam["upsc-cse"].TopicStatus["P1-t1"])
	}
	if got := byExam["gate-cs"].RevisionTopics; len(got) != 1 {
		t.Errorf("gate-cs revision topics = %v, want one entry", got)
	}
}

func TestProgressValidation(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown exam", "/api/syllabus/no-such-exam/progress", `{"topicStatus":{"P1-t1":"Pending"}}`, http.StatusNotFound},
		{"bad status", "/api/syllabus/upsc-cse/progress", `{"topicStatus":{"P1-t1":"Done"}}`, http.StatusBadRequest},
		{"unknown topic", "/api/syllabus/upsc-cse/progress", `{"topicStatus":{"P99-t1":"Pending"}}`, http.StatusBadRequest},
		{"empty update", "/api/syllabus/upsc-cse/progress", `{"topicStatus":{}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPatch, tt.path, strings.NewReader(tt.body), cookie, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCoachSpeechFallback(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.provider.SpeechErr = &llm.ErrRateLimit{}

	w := env.do(t, http.MethodPost, "/api/coach/speech",
		strings.NewReader(`{"text":"Hello there"}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with fallback: %s", w.Code, w.Body.String())
	}

	out := decodeBody[flows.TextToSpeechOutput](t, w)
	if out.AudioDataURI != flows.FallbackAudioDataURI() {
		t.Error("response is not the fallback audio clip")
	}
}

func TestCoachSpeechWithoutProvider(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	// Text-only providers leave the speech dependency nil.
	h := New(env.store, env.provider, nil, env.grader, env.blobs, model.Config{})
	router := chi.NewRouter()
	h.Routes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/coach/speech",
		strings.NewReader(`{"text":"Hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with fallback: %s", w.Code, w.Body.String())
	}
	out := decodeBody[flows.TextToSpeechOutput](t, w)
	if out.AudioDataURI != flows.FallbackAudioDataURI() {
		t.Error("response is not the fallback audio clip")
	}
}

func TestCoachSpeech(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.provider.SpeechPCM = []byte{1, 2, 3, 4}

	w := env.do(t, http.MethodPost, "/api/coach/speech",
		strings.NewReader(`{"text":"Hello","voice":"Schedar"}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	out := decodeBody[flows.TextToSpeechOutput](t, w)
	if !strings.HasPrefix(out.AudioDataURI, "data:audio/wav;base64,") {
		t.Errorf("audio uri prefix wrong: %.40q", out.AudioDataURI)
	}
	if env.provider.SpeechCalls[0].Voice != flows.VoiceFemale {
		t.Errorf("voice = %q, want Schedar", env.provider.SpeechCalls[0].Voice)
	}
}

func TestCoachReply(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)
	env.provider.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"reply":"Well said! What happened next?"}`)})

	w := env.do(t, http.MethodPost, "/api/coach/reply",
		strings.NewReader(`{"message":"I go to market yesterday","nativeLanguage":"Hindi"}`), cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	out := decodeBody[flows.CommunicationOutput](t, w)
	if out.Reply == "" {
		t.Error("empty reply")
	}
}

func TestSuggestionsEmptyTopics(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	// No weak topics: no model call, empty suggestions.
	w := env.do(t, http.MethodGet, "/api/suggestions", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if len(env.provider.Calls) != 0 {
		t.Errorf("provider calls = %d, want 0", len(env.provider.Calls))
	}
}

func TestCreateGallery(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.login(t, model.UserRoleAdmin)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("studentName", "Asha")
	_ = mw.WriteField("achievement", "Cleared UPSC Prelims")
	fw, _ := mw.CreateFormFile("photo", "asha.jpg")
	_, _ = fw.Write([]byte("jpeg-bytes"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/gallery", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(admin)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	item := decodeBody[model.GalleryItem](t, w)
	if item.PhotoURL == "" {
		t.Error("photo URL not set")
	}
	if len(env.blobs.puts) != 1 {
		t.Errorf("blob puts = %d, want 1", len(env.blobs.puts))
	}
}

func TestScheduledExams(t *testing.T) {
	env := newTestEnv(t)
	student, _ := env.login(t, model.UserRoleStudent)
	admin, _ := env.login(t, model.UserRoleAdmin)

	body := `{"examId":"ssc-cgl","questions":[{"questionId":"q1","questionType":"trueFalse","questionText":"?","correctAnswer":"True","pointsPossible":10}]}`

	w := env.do(t, http.MethodPost, "/api/scheduled", strings.NewReader(body), student, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("student create status = %d, want 403", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/scheduled", strings.NewReader(body), admin, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin create status = %d: %s", w.Code, w.Body.String())
	}
	created := decodeBody[model.ScheduledExam](t, w)
	if created.ExamName == "" {
		t.Error("exam name not defaulted from catalog")
	}

	w = env.do(t, http.MethodGet, "/api/scheduled/ssc-cgl", nil, student, nil)
	if w.Code != http.StatusOK {
		t.Errorf("latest status = %d: %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/scheduled/neet-ug", nil, student, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing latest status = %d, want 404", w.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t)
	cookie, _ := env.login(t, model.UserRoleStudent)

	w := env.do(t, http.MethodGet, "/api/catalog", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/catalog/gate-cs", nil, cookie, nil)
	if w.Code != http.StatusOK {
		t.Errorf("exam status = %d", w.Code)
	}

	w = env.do(t, http.MethodGet, "/api/catalog/none", nil, cookie, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown exam status = %d, want 404", w.Code)
	}
}
