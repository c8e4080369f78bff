package bot

// User facing replies
const (
	msgReported          = "メッセージを通報しました。"
	msgGenerationFailed  = "生成に失敗しました"
	msgIndexOutOfRange   = "キャラクターのインデックスは`%d`まで受け付けています\n`%s`"
	msgUnknownCharacter  = "キャラクターは`%s`のいずれかでなければいけません"
	msgNoSessions        = "会話記録が保存されていません"
	msgNoSessionWith     = "`%s`との会話記録が保存されていません"
	msgClearedAll        = "会話記録を削除しました。"
	msgClearedCharacter  = "`%s`との会話記録を削除しました。"
	msgDefaultSet        = "デフォルトのキャラクターを`%s`にセットしました。"
	msgDefaultCurrent    = "現在のデフォルトのキャラクターは`%s`です。"
	msgCharactersHeading = "使えるキャラクター (名前かインデックスで指定できます)"
)

const chatHowTo = `**使い方**
` + "`{prefix}chat <キャラクター> <メッセージ>`" + `
キャラクターは名前かインデックスで指定します。一覧は ` + "`{prefix}characters`" + ` で確認できます。
例: ` + "`{prefix}chat 0 こんにちは`"

const defaultHowTo = `**使い方**
` + "`{prefix}default <キャラクター>`" + `
メンションで話しかけたときのキャラクターを設定します。
例: ` + "`{prefix}default sensei`"

const helpText = `**コマンド一覧** (プレフィックス: {prefixes})
` + "`{prefix}chat <キャラクター> <メッセージ>`" + ` キャラクターと会話します (` + "`{prefix}c`" + ` でも可)
` + "`{prefix}characters`" + ` キャラクターの一覧を表示します
` + "`{prefix}default [キャラクター]`" + ` メンション時のキャラクターを表示・設定します
` + "`{prefix}clear [キャラクター]`" + ` 会話記録を削除します (省略するとすべて)
` + "`{prefix}help`" + ` このヘルプを表示します

ボットにメンションするか、ボットの返信にリプライしても会話できます。`
