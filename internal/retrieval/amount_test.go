package retrieval

import "testing"

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		wantRaw   string
		wantValue int64
		wantOK    bool
	}{
		{
			name:      "comma-grouped man-won",
			text:      "암진단비 5,000만원을 지급합니다.",
			wantRaw:   "5,000만원",
			wantValue: 50_000_000,
			wantOK:    true,
		},
		{
			name:      "cheonman-won",
			text:      "진단 확정 시 5천만원 지급",
			wantRaw:   "5천만원",
			wantValue: 50_000_000,
			wantOK:    true,
		},
		{
			name:      "eok",
			text:      "사망보험금 1억원",
			wantRaw:   "1억원",
			wantValue: 100_000_000,
			wantOK:    true,
		},
		{
			name:      "compound eok and cheonman",
			text:      "최대 1억 5천만원 한도",
			wantRaw:   "1억 5천만원",
			wantValue: 150_000_000,
			wantOK:    true,
		},
		{
			name:      "plain won",
			text:      "입원일당 30,000원",
			wantRaw:   "30,000원",
			wantValue: 30_000,
			wantOK:    true,
		},
		{
			name:      "percentage",
			text:      "수술비의 80% 보장",
			wantRaw:   "80%",
			wantValue: 80,
			wantOK:    true,
		},
		{
			name:   "no amount expression",
			text:   "보장개시일은 계약일로부터 90일이 지난 날의 다음날로 합니다.",
			wantOK: false,
		},
		{
			name:   "premium text is not a benefit amount",
			text:   "월 보험료 45,000원을 납입합니다.",
			wantOK: false,
		},
		{
			name:   "surrender value is not a benefit amount",
			text:   "해지환급금은 1,200만원입니다.",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, value, ok := ExtractAmount(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !tc.wantOK {
				return
			}
			if raw != tc.wantRaw {
				t.Errorf("raw = %q, want %q", raw, tc.wantRaw)
			}
			if value != tc.wantValue {
				t.Errorf("value = %d, want %d", value, tc.wantValue)
			}
		})
	}
}
