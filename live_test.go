package formz_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zoobzio/formz"
	"github.com/zoobzio/formz/rules"
	formztest "github.com/zoobzio/formz/testing"
)

func TestLatest_CoalescesPendingPosts(t *testing.T) {
	loop := formz.NewLoop(8)
	latest := formz.NewLatest[int](loop.Dispatch)

	var got []int
	latest.Subscribe(func(v int) { got = append(got, v) })

	latest.Post(1)
	latest.Post(2)
	latest.Post(3)

	if n := loop.RunPending(); n != 1 {
		t.Errorf("expected 1 delivery task, got %d", n)
	}
	if diff := cmp.Diff([]int{3}, got); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}

	latest.Post(4)
	loop.RunPending()
	if diff := cmp.Diff([]int{3, 4}, got); diff != "" {
		t.Errorf("deliveries mismatch (-want +got):\n%s", diff)
	}
}

func TestLatest_ReplaysToLateSubscriber(t *testing.T) {
	latest := formz.NewLatest[string](nil)
	latest.Post("hello")

	var got []string
	latest.Subscribe(func(v string) { got = append(got, v) })
	if diff := cmp.Diff([]string{"hello"}, got); diff != "" {
		t.Errorf("replay mismatch (-want +got):\n%s", diff)
	}

	if v, ok := latest.Value(); !ok || v != "hello" {
		t.Errorf("Value() = %q, %v", v, ok)
	}
}

func TestLatest_UnsubscribeCancelsReplay(t *testing.T) {
	loop := formz.NewLoop(4)
	latest := formz.NewLatest[int](loop.Dispatch)
	latest.Post(7)
	loop.RunPending()

	called := false
	unsubscribe := latest.Subscribe(func(int) { called = true })
	unsubscribe()
	unsubscribe()
	loop.RunPending()

	if called {
		t.Error("unsubscribed callback must not run")
	}
}

func TestLatest_EmptyValue(t *testing.T) {
	latest := formz.NewLatest[int](nil)
	called := false
	latest.Subscribe(func(int) { called = true })
	if called {
		t.Error("subscribe must not deliver before a post")
	}
	if _, ok := latest.Value(); ok {
		t.Error("expected no value")
	}
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	loop := formz.NewLoop(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	ran := make(chan struct{})
	loop.Dispatch(func() { close(ran) })
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for task")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for Run to return")
	}
}

func TestLiveForm_PendingThenValidSubmit(t *testing.T) {
	rec := formztest.NewRecorder[string]()
	lf := formz.NewLive(rec.Attach(formz.NewBuilder[string]().Strategy(formz.StrategyAllTime)))

	email := formz.NewLatest[string](nil)
	password := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "email", email, rules.Required(msgEmail.Message))
	formz.BindLatest(lf, "password", password, rules.MinLength(8, msgPassword.Message))

	form, err := lf.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer lf.Close()

	if diff := cmp.Diff([]string{"email", "password"}, form.Pending()); diff != "" {
		t.Errorf("pending mismatch (-want +got):\n%s", diff)
	}
	formztest.RequireState(t, form, "email", formz.FieldUnvalidated)

	email.Post("")
	email.Post("")
	email.Post("someone@example.com")
	password.Post("correct horse")

	wantFields := []formztest.FieldEvent[string]{
		{Key: "email", Messages: formz.Messages{{Message: msgEmail.Message, Type: rules.TypeRequired}}},
		{Key: "email"},
	}
	if diff := cmp.Diff(wantFields, rec.Fields(), cmpMessages); diff != "" {
		t.Errorf("field callbacks mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{true, false, true}, rec.Forms()); diff != "" {
		t.Errorf("form callbacks mismatch (-want +got):\n%s", diff)
	}
	if len(form.Pending()) != 0 {
		t.Errorf("expected no pending fields, got %v", form.Pending())
	}

	lf.Submit()

	want := [][]formz.FieldValue[string]{{
		{Key: "email", Value: "someone@example.com"},
		{Key: "password", Value: "correct horse"},
	}}
	if diff := cmp.Diff(want, rec.ValidSubmits()); diff != "" {
		t.Errorf("valid submits mismatch (-want +got):\n%s", diff)
	}
}

func TestLiveForm_LoopDispatch(t *testing.T) {
	loop := formz.NewLoop(16)
	rec := formztest.NewRecorder[string]()
	lf := formz.NewLive(rec.Attach(formz.NewBuilder[string]())).Dispatcher(loop.Dispatch)

	name := formz.NewLatest[string](loop.Dispatch)
	formz.BindLatest(lf, "name", name, rules.Required("name required"))

	if _, err := lf.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer lf.Close()

	name.Post("Ada")
	lf.Submit()
	if rec.Total() != 0 {
		t.Fatalf("nothing should run before the loop drains, got %v", rec.Order())
	}

	loop.RunPending()
	if diff := cmp.Diff([]string{"field", "form", "valid"}, rec.Order()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLiveForm_SubmitTrigger(t *testing.T) {
	rec := formztest.NewRecorder[string]()
	lf := formz.NewLive(rec.Attach(formz.NewBuilder[string]()))
	name := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "name", name, rules.Required("name required"))

	if _, err := lf.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer lf.Close()

	name.Post("")
	lf.Submits().Fire()

	if got := rec.FailedSubmits(); len(got) != 1 || got[0][0].Key != "name" {
		t.Errorf("expected one failed submit for name, got %v", got)
	}
}

func TestLiveForm_StartTwiceAndClose(t *testing.T) {
	rec := formztest.NewRecorder[string]()
	lf := formz.NewLive(rec.Attach(formz.NewBuilder[string]().Strategy(formz.StrategyAllTime)))
	name := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "name", name, rules.Required("name required"))

	form, err := lf.Start(context.Background())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := lf.Start(context.Background()); !errors.Is(err, formz.ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	lf.Close()
	lf.Close()
	if !form.Disposed() {
		t.Error("expected form to be disposed")
	}

	rec.Clear()
	name.Post("")
	lf.Submit()
	if rec.Total() != 0 {
		t.Errorf("expected no callbacks after Close, got %v", rec.Order())
	}
}

func TestLiveForm_CloseFromReplayedValueCallback(t *testing.T) {
	var lf *formz.LiveForm[string]
	b := formz.NewBuilder[string]().
		Strategy(formz.StrategyAllTime).
		OnFormValidationChange(func(valid bool) {
			if !valid {
				lf.Close()
			}
		})
	lf = formz.NewLive(b)

	name := formz.NewLatest[string](nil)
	name.Post("")
	formz.BindLatest(lf, "name", name, rules.Required("name required"))

	var form *formz.Form[string]
	runWithin(t, 2*time.Second, func() {
		var err error
		form, err = lf.Start(context.Background())
		if err != nil {
			t.Errorf("Start() error = %v", err)
		}
	})
	if form == nil || !form.Disposed() {
		t.Fatal("expected the form to be disposed by Close")
	}

	called := false
	lf.Submits().Subscribe(func() { called = true })
	lf.Submit()
	if !called {
		t.Error("submit trigger should still fire")
	}
	if form.Submitted() {
		t.Error("closed form must not be submitted")
	}
}

func TestLiveForm_CloseDuringBuild(t *testing.T) {
	var lf *formz.LiveForm[string]
	b := formz.NewBuilder[string]().
		Strategy(formz.StrategyAllTime).
		OnFieldValidationChange(func(string, formz.Messages) { lf.Close() }).
		Add(formz.FieldOf("title", "", rules.Required("title required")))
	lf = formz.NewLive(b)

	name := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "name", name, rules.Required("name required"))

	var form *formz.Form[string]
	runWithin(t, 2*time.Second, func() {
		form, _ = lf.Start(context.Background())
	})
	if form == nil || !form.Disposed() {
		t.Fatal("expected the form to be disposed")
	}

	name.Post("Ada")
	if _, ok := form.Value("name"); ok {
		t.Error("closed form must not receive values")
	}
}

func TestLiveForm_RetryAfterFailedStart(t *testing.T) {
	rec := formztest.NewRecorder[string]()
	b := rec.Attach(formz.NewBuilder[string]())
	lf := formz.NewLive(b)

	confirm := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "confirm", confirm).TriggeredBy("password")

	if _, err := lf.Start(context.Background()); !errors.Is(err, formz.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	password := formz.NewLatest[string](nil)
	formz.BindLatest(lf, "password", password)

	form, err := lf.Start(context.Background())
	if err != nil {
		t.Fatalf("retry Start() error = %v", err)
	}
	defer lf.Close()

	password.Post("secret")
	confirm.Post("secret")
	lf.Submit()
	if n := len(rec.ValidSubmits()); n != 1 {
		t.Errorf("expected 1 valid submit, got %d", n)
	}
	if len(form.Pending()) != 0 {
		t.Errorf("expected no pending fields, got %v", form.Pending())
	}
}
