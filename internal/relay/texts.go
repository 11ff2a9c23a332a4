package relay

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"
)

// messageLimit is Telegram's cap on message text, in UTF-16 code units.
const messageLimit = 4096

const (
	textChecking       = "🔎 Memeriksa keanggotaan kamu..."
	textJoinPrompt     = "📢 Gabung dulu ke komunitas ini ya:"
	textVerified       = "✅ Verifikasi sukses!\n\n💬 Sekarang kirim pesan anonim kamu:"
	textEmpty          = "❗ Pesan tidak boleh kosong. Kirim pesan teks."
	textResend         = "✏️ Baik, kirim pesan baru kamu:"
	textPublishFailed  = "❌ Gagal mengirim pesan ke channel. Silakan coba lagi."
	textNothingToSend  = "❌ Tidak ada pesan untuk dikirim."
	textStartHint      = "👋 Halo! Kirim /start untuk memulai."
	textUnknownCommand = "❓ Perintah tidak dimengerti. Gunakan tombol yang tersedia atau kirim /start."
	textGenericError   = "❌ Terjadi kesalahan. Silakan coba lagi."
)

func tooLongText(limit, got int) string {
	return fmt.Sprintf("❗ Pesan terlalu panjang (%d karakter). Maksimal %d karakter, kirim pesan yang lebih pendek.", got, limit)
}

// textLen measures s the way Telegram counts message length.
func textLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// maxSubmission is the longest text whose preview and channel post both fit
// in a single message.
func maxSubmission(s Settings) int {
	overhead := max(textLen(previewText("", s.ChannelName)), textLen(ChannelText("", s.BotUsername)))
	return messageLimit - overhead
}

func welcomeText(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "User"
	}
	return fmt.Sprintf("👋 Halo %s!\n\n🌐 Pilih bahasa / Choose your language:", html.EscapeString(name))
}

func missingText(notJoined []string) string {
	return fmt.Sprintf("❗ Kamu belum join semua channel.\n\nYang belum: %s\n\nGabung dulu ya:",
		html.EscapeString(strings.Join(notJoined, ", ")))
}

func previewText(text, channel string) string {
	return fmt.Sprintf("🎭 Preview Pesan Anonim:\n\n💬 \"%s\"\n\n📤 Kirim ke channel %s sekarang?",
		html.EscapeString(text), html.EscapeString(channel))
}

// ChannelText is the wrapper published to the broadcast channel.
func ChannelText(text, botUsername string) string {
	return fmt.Sprintf("🎭 Pesan Anonim\n\n💬 \"%s\"\n\n📝 Dikirim melalui @%s",
		html.EscapeString(text), html.EscapeString(botUsername))
}

func sentText(channel string) string {
	return fmt.Sprintf("✅ Pesan berhasil dikirim ke channel %s!\n\n🔄 Kirim /start untuk mengirim pesan lain.",
		html.EscapeString(channel))
}

func languageKeyboard() Keyboard {
	return Keyboard{{
		{Text: "🇮🇩 Indonesia", Data: DataLanguageID},
		{Text: "🇬🇧 English", Data: DataLanguageEN},
	}}
}

func joinKeyboard(communities []Community) Keyboard {
	kb := make(Keyboard, 0, len(communities)+1)
	for _, c := range communities {
		if c.URL == "" {
			continue
		}
		kb = append(kb, []Button{{Text: c.Title, URL: c.URL}})
	}
	return append(kb, []Button{{Text: "✅ Saya Sudah Join", Data: DataCheckJoin}})
}

func previewKeyboard() Keyboard {
	return Keyboard{{
		{Text: "✅ Ya, kirim sekarang!", Data: DataSendNow},
		{Text: "✏️ Ubah pesan", Data: DataEditMessage},
	}}
}
