package fsmutil

import "testing"

func TestPendingGuard(t *testing.T) {
	chatID := int64(555001)

	if !SetPending(chatID, "grade:add") {
		t.Fatal("первый SetPending должен пройти")
	}
	if SetPending(chatID, "grade:add") {
		t.Fatal("повторный SetPending должен блокироваться")
	}
	if SetPending(chatID, "course:enroll") {
		t.Fatal("чужой ключ тоже блокируется, пока чат занят")
	}

	// Снятие с несовпадающим ключом — no-op.
	ClearPending(chatID, "course:enroll")
	if SetPending(chatID, "grade:add") {
		t.Fatal("чужой ClearPending не должен снимать флаг")
	}

	ClearPending(chatID, "grade:add")
	if !SetPending(chatID, "grade:add") {
		t.Fatal("после ClearPending чат должен освободиться")
	}
	ClearPending(chatID, "grade:add")
}

func TestIsCancelText(t *testing.T) {
	for _, s := range []string{"Отмена", "отмена", "/cancel", "CANCEL", "  отмена  "} {
		if !IsCancelText(s) {
			t.Fatalf("%q должно считаться отменой", s)
		}
	}
	for _, s := range []string{"", "продолжить", "отменить"} {
		if IsCancelText(s) {
			t.Fatalf("%q не должно считаться отменой", s)
		}
	}
}
