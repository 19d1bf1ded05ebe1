package fair

import "testing"

func TestSealCardRoundTrip(t *testing.T) {
	table := standardTable()

	for _, cardNumber := range []uint{1, 5, 100, 1000} {
		card, err := SealCard(table, 1000, cardNumber, "game-xyz")
		if err != nil {
			t.Fatalf("seal card %d: %v", cardNumber, err)
		}
		if card.SealSeed == "" || card.SealHash == "" {
			t.Fatalf("card %d missing seal fields: %+v", cardNumber, card)
		}
		if !Verify(card.SealSeed, card.Prize, card.CardNumber, card.SealHash) {
			t.Fatalf("freshly sealed card %d failed verification", cardNumber)
		}
	}
}

func TestSealCardMatchesAllocation(t *testing.T) {
	table := standardTable()

	card, err := SealCard(table, 1000, 5, "game-xyz")
	if err != nil {
		t.Fatalf("seal card: %v", err)
	}
	if card.Prize == nil || card.Prize.Name != "Grande Prémio" {
		t.Fatalf("card 5 should seal Grande Prémio, got %+v", card.Prize)
	}

	card, err = SealCard(table, 1000, 500, "game-xyz")
	if err != nil {
		t.Fatalf("seal card: %v", err)
	}
	if card.Prize != nil {
		t.Fatalf("card 500 should seal no prize, got %+v", card.Prize)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	table := standardTable()
	card, err := SealCard(table, 1000, 5, "game-xyz")
	if err != nil {
		t.Fatalf("seal card: %v", err)
	}

	if Verify(card.SealSeed+"x", card.Prize, card.CardNumber, card.SealHash) {
		t.Fatal("verification should fail for altered seed")
	}
	if Verify(card.SealSeed, card.Prize, card.CardNumber+1, card.SealHash) {
		t.Fatal("verification should fail for altered card number")
	}
	if Verify(card.SealSeed, nil, card.CardNumber, card.SealHash) {
		t.Fatal("verification should fail for stripped prize")
	}

	altered := *card.Prize
	altered.Name = "Prémio Falso"
	if Verify(card.SealSeed, &altered, card.CardNumber, card.SealHash) {
		t.Fatal("verification should fail for renamed prize")
	}
}

func TestVerifyNoPrizeCard(t *testing.T) {
	card, err := SealCard(standardTable(), 1000, 999, "game-xyz")
	if err != nil {
		t.Fatalf("seal card: %v", err)
	}
	if card.Prize != nil {
		t.Fatalf("expected no prize for card 999, got %+v", card.Prize)
	}
	if !Verify(card.SealSeed, nil, card.CardNumber, card.SealHash) {
		t.Fatal("no-prize card failed verification")
	}
}

func TestSealHashStable(t *testing.T) {
	prize := band("Grande Prémio", "1", "100")

	first, err := SealHash("fixed-seed", &prize, 5)
	if err != nil {
		t.Fatalf("seal hash: %v", err)
	}
	second, err := SealHash("fixed-seed", &prize, 5)
	if err != nil {
		t.Fatalf("seal hash: %v", err)
	}
	if first != second {
		t.Fatalf("seal hash not stable: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("seal hash length %d, want 64", len(first))
	}
}

func TestSealCardOutOfRange(t *testing.T) {
	if _, err := SealCard(standardTable(), 100, 101, "game-xyz"); err == nil {
		t.Fatal("expected error for card number beyond stock")
	}
}
