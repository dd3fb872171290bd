package queue

import "testing"

func TestConfirmationMessageValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		msg     ConfirmationMessage
		wantErr bool
	}{
		{
			name: "valid message",
			msg:  ConfirmationMessage{MessageID: "m1", CorrelationID: "c1"},
		},
		{
			name: "correlation id optional",
			msg:  ConfirmationMessage{MessageID: "m1"},
		},
		{
			name:    "missing message id",
			msg:     ConfirmationMessage{CorrelationID: "c1"},
			wantErr: true,
		},
		{
			name:    "blank message id",
			msg:     ConfirmationMessage{MessageID: "   "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.msg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error = %v", err)
			}
		})
	}
}
