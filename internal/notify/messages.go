package notify

import (
	"fmt"

	"saldo/internal/core"
)

func transactionMessage(tx core.Transaction, exponent int32) (title, body string) {
	amount := core.FormatMoney(tx.Amount, exponent)
	if tx.Kind == core.Credit {
		return "Pemasukan Baru 💰", fmt.Sprintf("%s telah ditambahkan", amount)
	}
	return "Pengeluaran Baru 💸", fmt.Sprintf("%s telah dikeluarkan", amount)
}

func progressMessage(name string, percent int) (title, body string) {
	return "Progress Target 🎯", fmt.Sprintf("Target %q telah mencapai %d%%", name, percent)
}

func achievedMessage(name string) (title, body string) {
	return "Target Tercapai! 🎉", fmt.Sprintf("Selamat! Target %q telah tercapai", name)
}

func reminderMessage(name string) (title, body string) {
	return "Peringatan Target 🎯", fmt.Sprintf("Target %q sudah tercapai. Jangan lupa untuk menandainya selesai!", name)
}

func lowBalanceMessage(balance core.Money, exponent int32) (title, body string) {
	return "Peringatan Saldo ⚠️", fmt.Sprintf("Saldo Anda tinggal %s", core.FormatMoney(balance, exponent))
}
