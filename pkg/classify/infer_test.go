package classify

import "testing"

func TestInferAction(t *testing.T) {
	tests := []struct {
		text string
		want TemplateAction
	}{
		{"rebuild the whole site from scratch", ActionFullControl},
		{"start over with something modern", ActionFullControl},
		{"make me a new website for my bakery", ActionFullControl},
		{"remove the pricing section", ActionRemove},
		{"get rid of the banner", ActionRemove},
		{"add a contact form", ActionAdd},
		{"insert a testimonials section under the hero", ActionAdd},
		{"make the header blue", ActionRestyle},
		{"change the background color to dark blue", ActionRestyle},
		{"use a nicer font for headings", ActionRestyle},
		{"change the headline to say Grand Opening", ActionModify},
		{"update the phone number in the footer", ActionModify},
		{"fix the broken link in the nav", ActionModify},
		{"what should I improve on this page?", ActionSuggest},
		{"any ideas for the landing page?", ActionSuggest},
		{"what do you think of the layout", ActionSuggest},
		{"hello there", ActionNone},
		{"", ActionNone},
		{"what's your address?", ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := InferAction(tt.text); got != tt.want {
				t.Errorf("InferAction(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSurgical(t *testing.T) {
	surgical := []TemplateAction{ActionAdd, ActionRemove, ActionModify, ActionRestyle, ActionSuggest}
	for _, a := range surgical {
		if !a.IsSurgical() {
			t.Errorf("%q should be surgical", a)
		}
	}
	for _, a := range []TemplateAction{ActionFullControl, ActionNone} {
		if a.IsSurgical() {
			t.Errorf("%q should not be surgical", a)
		}
	}
}
