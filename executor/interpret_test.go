package executor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInterpretStep(t *testing.T) {
	tests := []struct {
		name string
		step string
		want stepAction
	}{
		{
			name: "navigate to a url",
			step: "Navigate to http://localhost:3000/login",
			want: stepAction{kind: actionNavigate, target: "http://localhost:3000/login"},
		},
		{
			name: "url keeps no trailing punctuation",
			step: "Visit https://localhost:8080/tasks.",
			want: stepAction{kind: actionNavigate, target: "https://localhost:8080/tasks"},
		},
		{
			name: "navigate without a url keeps an element hint",
			step: "Go to the settings page",
			want: stepAction{kind: actionNavigate, target: "settings"},
		},
		{
			name: "open counts as navigation",
			step: "Open the task list",
			want: stepAction{kind: actionNavigate, target: "task list"},
		},
		{
			name: "click with quoted target",
			step: `Click the "Create Task" button`,
			want: stepAction{kind: actionClick, target: "Create Task"},
		},
		{
			name: "click with plain target",
			step: "Click the Login button",
			want: stepAction{kind: actionClick, target: "Login"},
		},
		{
			name: "press counts as click",
			step: "Press submit",
			want: stepAction{kind: actionClick, target: "submit"},
		},
		{
			name: "click without target",
			step: "Click",
			want: stepAction{kind: actionClick},
		},
		{
			name: "enter quoted text",
			step: `Enter "admin@example.com" in the email field`,
			want: stepAction{kind: actionInput, value: "admin@example.com"},
		},
		{
			name: "type without explicit text",
			step: "Type valid credentials",
			want: stepAction{kind: actionInput},
		},
		{
			name: "wait with explicit seconds",
			step: "Wait 3 seconds for the page to settle",
			want: stepAction{kind: actionWait, wait: 3 * time.Second},
		},
		{
			name: "wait without a number",
			step: "Wait for the results to appear",
			want: stepAction{kind: actionWait, wait: time.Second},
		},
		{
			name: "long waits are capped",
			step: "Wait 30 seconds",
			want: stepAction{kind: actionWait, wait: 5 * time.Second},
		},
		{
			name: "scroll",
			step: "Scroll down to the footer",
			want: stepAction{kind: actionScroll},
		},
		{
			name: "verify is observational",
			step: "Verify the dashboard is displayed",
			want: stepAction{kind: actionVerify},
		},
		{
			name: "check counts as verification",
			step: "Check that the error message appears",
			want: stepAction{kind: actionVerify},
		},
		{
			name: "unknown verbs become observations",
			step: "Take a screenshot of the result",
			want: stepAction{kind: actionObserve},
		},
		{
			name: "verbs match case-insensitively",
			step: "CLICK THE SAVE BUTTON",
			want: stepAction{kind: actionClick, target: "SAVE"},
		},
		{
			name: "click wins over a later verify",
			step: "Click the save button and verify the toast",
			want: stepAction{kind: actionClick, target: "save verify toast"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interpretStep(tt.step))
		})
	}
}

func TestFirstURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", firstURL("go to http://localhost:3000 now"))
	assert.Equal(t, "", firstURL("go to the home page"))
	assert.Equal(t, "https://127.0.0.1:8443/app", firstURL(`open "https://127.0.0.1:8443/app",`))
}

func TestQuotedText(t *testing.T) {
	assert.Equal(t, "hello", quotedText(`enter "hello" in the field`))
	assert.Equal(t, "hello", quotedText("enter 'hello' in the field"))
	assert.Equal(t, "", quotedText("enter something"))
}

func TestElementHint(t *testing.T) {
	assert.Equal(t, "Login", elementHint("on the Login button"))
	assert.Equal(t, "Save changes", elementHint(`the "Save changes" link`))
	assert.Equal(t, "", elementHint("the button"))
}
