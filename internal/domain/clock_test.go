package domain

import (
	"encoding/json"
	"testing"
)

func TestParseClock(t *testing.T) {
	tests := map[string]TimeOfDay{
		"10:20":    Clock(10, 20),
		"9:05 am":  Clock(9, 5),
		"10:30 AM": Clock(10, 30),
		"1:15 pm":  Clock(13, 15),
		"16:59:59": EndOfDay,
		"EOD":      EndOfDay,
	}
	for in, want := range tests {
		got, err := ParseClock(in)
		if err != nil {
			t.Errorf("ParseClock(%q) error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseClock(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseClock("noon-ish"); err == nil {
		t.Fatalf("expected an error for unparseable input")
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A TimeOfDay `json:"a"`
		B TimeOfDay `json:"b"`
	}{Clock(9, 5), NotYet})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"a":"09:05:00","b":null}` {
		t.Fatalf("json = %s", b)
	}

	var back struct {
		A TimeOfDay `json:"a"`
		B TimeOfDay `json:"b"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.A != Clock(9, 5) || back.B != NotYet {
		t.Fatalf("round trip = %+v", back)
	}
	if Clock(13, 5).String() != "01:05 PM" {
		t.Fatalf("String() = %q", Clock(13, 5).String())
	}
}

func TestTimeOfDayOrdering(t *testing.T) {
	early, late := Clock(9, 0), Clock(10, 20)
	if !late.After(early) || late.Before(early) {
		t.Fatalf("%v should be after %v", late, early)
	}
	if !early.Before(late) || early.After(late) {
		t.Fatalf("%v should be before %v", early, late)
	}
	if early.After(early) || early.Before(early) {
		t.Fatalf("%v compared with itself", early)
	}
}
