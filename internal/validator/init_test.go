package validator

import (
	"ctchen222/tictactoe-bot/pkg/proto"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     proto.ClientToServerMessage
		wantErr string
	}{
		{name: "move", msg: proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{2, 0}}},
		{name: "rematch", msg: proto.ClientToServerMessage{Type: proto.TypeRematch}},
		{name: "unknown type", msg: proto.ClientToServerMessage{Type: "resign"}, wantErr: "type"},
		{name: "position too long", msg: proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{0, 1, 2}}, wantErr: "position"},
		{name: "position off board", msg: proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{3, 0}}, wantErr: "position[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GetValidator().Struct(tt.msg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.wantErr, verrs[0].Field())
		})
	}
}
